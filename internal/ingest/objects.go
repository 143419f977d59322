package ingest

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/andresuchdata/logistics-dash/backend-go/internal/domain"
	"github.com/andresuchdata/logistics-dash/backend-go/internal/storage"
)

// ObjectSource is the part of storage.ObjectStorage needed to import a prefix.
type ObjectSource interface {
	ListObjects(ctx context.Context, prefix string) ([]storage.ObjectInfo, error)
	OpenObject(ctx context.Context, key string) (io.ReadCloser, error)
}

// ReadObjectOrders reads every .csv object under prefix in listing order and
// returns the combined orders together with the keys that were read.
func ReadObjectOrders(ctx context.Context, src ObjectSource, prefix string) ([]domain.Order, []string, error) {
	objects, err := src.ListObjects(ctx, prefix)
	if err != nil {
		return nil, nil, err
	}

	var (
		orders []domain.Order
		keys   []string
	)
	for _, obj := range objects {
		if !strings.HasSuffix(strings.ToLower(obj.Key), ".csv") {
			continue
		}

		batch, err := readObject(ctx, src, obj.Key)
		if err != nil {
			return nil, nil, err
		}
		orders = append(orders, batch...)
		keys = append(keys, obj.Key)
	}

	if len(keys) == 0 {
		return nil, nil, fmt.Errorf("no CSV objects under prefix %q", prefix)
	}
	return orders, keys, nil
}

func readObject(ctx context.Context, src ObjectSource, key string) ([]domain.Order, error) {
	r, err := src.OpenObject(ctx, key)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	orders, err := ReadOrders(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return orders, nil
}
