package transform

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphlore/graphlore/internal/source"
)

type fakeTransformer struct{ name string }

func (f *fakeTransformer) Name() string                            { return f.name }
func (f *fakeTransformer) CanHandle(src *source.DataSource) bool   { return true }
func (f *fakeTransformer) Transform(ctx context.Context, src *source.DataSource, content string) (*source.ProcessingResult, error) {
	return source.NewProcessingResult(src.ID), nil
}

func TestRegistrySelection(t *testing.T) {
	registry := NewRegistry(slog.Default())

	cases := []struct {
		sourceType source.SourceType
		want       string
	}{
		{source.SourceTypeDocument, "document"},
		{source.SourceTypeWeb, "document"},
		{source.SourceTypeCode, "code"},
		{source.SourceTypeSQL, "sql"},
		{source.SourceTypeConfig, "generic"},
		{source.SourceTypeUnknown, "generic"},
	}
	for _, tc := range cases {
		src := source.NewDataSource("x", tc.sourceType)
		tr, err := registry.GetTransformer(src)
		require.NoError(t, err, "type %s", tc.sourceType)
		assert.Equal(t, tc.want, tr.Name(), "type %s", tc.sourceType)
	}
}

func TestRegistrySelectionIsTotal(t *testing.T) {
	registry := NewRegistry(nil)
	for _, st := range []source.SourceType{
		source.SourceTypeDocument, source.SourceTypeCode, source.SourceTypeSQL,
		source.SourceTypeAPI, source.SourceTypeConfig, source.SourceTypeWeb,
		source.SourceTypeUnknown,
	} {
		_, err := registry.GetTransformer(source.NewDataSource("x", st))
		assert.NoError(t, err, "type %s", st)
	}
}

func TestRegistryRegisterPrepends(t *testing.T) {
	registry := NewRegistry(nil)
	registry.Register(&fakeTransformer{name: "custom"})

	tr, err := registry.GetTransformer(source.NewDataSource("x", source.SourceTypeCode))
	require.NoError(t, err)
	assert.Equal(t, "custom", tr.Name())
}

func TestGenericTransformerChunks(t *testing.T) {
	src := source.NewDataSource("data.yaml", source.SourceTypeConfig).WithPath("data.yaml")
	result, err := NewGenericTransformer().Transform(context.Background(), src, "key: value")
	require.NoError(t, err)
	require.Len(t, result.Chunks, 1)
	assert.Equal(t, source.ChunkTypeText, result.Chunks[0].Type)
}
