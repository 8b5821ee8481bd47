package vector

import (
	"context"
	"fmt"
	"io"

	"layer-manager/core/layer"
	"layer-manager/core/reconcile"
)

// maxPayload bounds the documents a vector layer may load.
const maxPayload = 64 << 20

func fetch(ctx context.Context, env reconcile.Env, src layer.Source) ([]byte, error) {
	res, err := env.Resolver.Resolve(ctx, src)
	if err != nil {
		return nil, err
	}
	body, err := env.Resolver.Fetch(ctx, res)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, maxPayload+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", src, err)
	}
	if len(data) > maxPayload {
		return nil, fmt.Errorf("%w: %s is larger than %d bytes", layer.ErrConfiguration, src, maxPayload)
	}
	return data, nil
}
