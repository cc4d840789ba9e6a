package board

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/DoyleJ11/board-sync/pkg/types"
)

func sample() types.Board {
	return types.Board{
		Title:     Title,
		UpdatedAt: "2025-01-01T00:00:00.000Z",
		Sections: []types.Section{{ID: "s1", Title: "Entry", Tasks: []types.Task{
			{ID: "t1", Text: "Lay tile"},
			{ID: "t2", Text: "Grout"},
		}}},
	}
}

func TestSignature_IgnoresUpdatedAt(t *testing.T) {
	a := sample()
	b := sample()
	b.UpdatedAt = "2030-01-01T00:00:00.000Z"
	assert.Equal(t, Signature(a), Signature(b))

	b.Sections[0].Tasks[0].Done = true
	assert.NotEqual(t, Signature(a), Signature(b))
}

func TestSignature_NilAndEmptyTasksMatch(t *testing.T) {
	a := types.Board{Title: Title, Sections: []types.Section{{ID: "s", Title: "x"}}}
	b := types.Board{Title: Title, Sections: []types.Section{{ID: "s", Title: "x", Tasks: []types.Task{}}}}
	assert.Equal(t, Signature(a), Signature(b))
}

func TestTranslationSignature_IgnoresFlags(t *testing.T) {
	a := sample()
	b := sample()
	b.Sections[0].Tasks[0].Done = true
	b.Sections[0].Tasks[1].Starred = true
	assert.Equal(t, TranslationSignature(a.Sections), TranslationSignature(b.Sections))

	b.Sections[0].Tasks[1].Text = "Grout tiles"
	assert.NotEqual(t, TranslationSignature(a.Sections), TranslationSignature(b.Sections))
}

func TestDefault_IsCanonical(t *testing.T) {
	d := Default()
	res := NormalizeBoard(d)
	assert.True(t, res.OK())
	assert.Equal(t, contentOf(d), contentOf(res.Board))
	assert.Len(t, d.Sections[0].Tasks, 6)
}
