package xmetrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type ctxKey struct{}

type nilObserver struct{}

func (nilObserver) Start(context.Context, SpanOptions) (context.Context, Span) {
	return nil, nil
}

func TestStart_Fallbacks(t *testing.T) {
	//nolint:staticcheck // nil ctx 是被测行为
	ctx, span := Start(nil, nil, SpanOptions{})
	assert.NotNil(t, ctx)
	assert.Equal(t, NoopSpan{}, span)

	parent := context.WithValue(context.Background(), ctxKey{}, "v")
	ctx, span = Start(parent, nilObserver{}, SpanOptions{})
	assert.Equal(t, parent, ctx)
	assert.Equal(t, NoopSpan{}, span)

	//nolint:staticcheck // nil ctx 是被测行为
	ctx, span = Start(nil, NoopObserver{}, SpanOptions{})
	assert.NotNil(t, ctx)
	span.End(Result{})
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "Internal", KindInternal.String())
	assert.Equal(t, "Server", KindServer.String())
	assert.Equal(t, "Client", KindClient.String())
	assert.Equal(t, "Kind(9)", Kind(9).String())
}

func TestResolveStatus(t *testing.T) {
	assert.Equal(t, StatusOK, resolveStatus(Result{}))
	assert.Equal(t, StatusError, resolveStatus(Result{Err: assert.AnError}))
	assert.Equal(t, StatusOK, resolveStatus(Result{Status: StatusOK, Err: assert.AnError}))
}
