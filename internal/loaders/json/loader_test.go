package json

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/campus-rag/internal/core/domain"
	"github.com/custodia-labs/campus-rag/internal/core/ports/driven"
)

func rawJSON(content string) *domain.RawDocument {
	return &domain.RawDocument{Path: "/data/faq.json", Type: domain.SourceTypeJSON, Content: []byte(content)}
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Loader = (*Loader)(nil)
	assert.Equal(t, domain.SourceTypeJSON, New().Type())
}

func TestLoad_ArrayMinimumLength(t *testing.T) {
	docs, err := New().Load(context.Background(), rawJSON(
		`[{"content": "short"}, {"content": "a sufficiently long passage exceeding twenty characters"}]`))

	require.NoError(t, err)
	require.Len(t, docs, 1)
	doc := docs[0]
	assert.Equal(t, "a sufficiently long passage exceeding twenty characters", doc.Content)
	assert.Equal(t, "faq.json[1]", doc.Source)
	assert.Equal(t, 1, doc.Metadata[domain.MetaItemID])
	assert.Equal(t, domain.DefaultCategory, doc.Metadata[domain.MetaCategory])
}

func TestLoad_ArrayRecords(t *testing.T) {
	docs, err := New().Load(context.Background(), rawJSON(`[
		{"id": 7, "text": "Hostel curfew is at eleven pm sharp.", "category": "hostel"},
		{"id": "fee-1", "content": "", "text": "Tuition is payable in two instalments."},
		"a bare string that is long enough to count",
		{"title": "no text field at all, so it is dropped"},
		{"content": "exactly twenty chars"}
	]`))

	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "Hostel curfew is at eleven pm sharp.", docs[0].Content)
	assert.Equal(t, int64(7), docs[0].Metadata[domain.MetaItemID])
	assert.Equal(t, "hostel", docs[0].Metadata[domain.MetaCategory])
	assert.Equal(t, "faq.json[0]", docs[0].Source)

	assert.Equal(t, "Tuition is payable in two instalments.", docs[1].Content)
	assert.Equal(t, "fee-1", docs[1].Metadata[domain.MetaItemID])
	assert.NotEqual(t, docs[0].ID, docs[1].ID)
}

func TestLoad_SingleRecord(t *testing.T) {
	t.Run("long enough", func(t *testing.T) {
		docs, err := New().Load(context.Background(), rawJSON(
			`{"content": "The campus shuttle runs every fifteen minutes.", "category": "transport"}`))
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "faq.json", docs[0].Source)
		assert.Equal(t, "transport", docs[0].Metadata[domain.MetaCategory])
	})

	t.Run("too short", func(t *testing.T) {
		docs, err := New().Load(context.Background(), rawJSON(`{"text": "tiny"}`))
		require.NoError(t, err)
		assert.Empty(t, docs)
	})
}

func TestLoad_PrettyPrintsOtherValues(t *testing.T) {
	docs, err := New().Load(context.Background(), rawJSON(`{"zeta":1,"alpha":{"b":[1,2]}}`))

	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "{\n  \"zeta\": 1,\n  \"alpha\": {\n    \"b\": [\n      1,\n      2\n    ]\n  }\n}", docs[0].Content)
}

func TestLoad_Malformed(t *testing.T) {
	docs, err := New().Load(context.Background(), rawJSON(`{"content": `))

	assert.Nil(t, docs)
	assert.ErrorIs(t, err, domain.ErrMalformedContent)
}

func TestRecordText(t *testing.T) {
	tests := []struct {
		name   string
		record map[string]any
		want   string
		ok     bool
	}{
		{"content wins", map[string]any{"content": "content field that is long", "text": "text field that is also long"}, "content field that is long", true},
		{"text fallback", map[string]any{"text": "text field that is long enough"}, "text field that is long enough", true},
		{"whitespace not counted", map[string]any{"content": "   short but padded     "}, "", false},
		{"missing", map[string]any{}, "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := recordText(tc.record)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}
