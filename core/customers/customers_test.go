package customers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strp(v string) *string { return &v }

func TestBuild(t *testing.T) {
	r := Build("Ksyshenka", []Entry{
		{OrderBy: strp("anna+Bob"), Title: "Zelda"},
		{OrderBy: nil, Title: "portal"},
		{OrderBy: strp("Bob"), Title: "alan wake"},
		{OrderBy: strp(" "), Title: "Celeste"},
	})

	assert.Equal(t, 4, r.All)
	assert.Equal(t, &Person{List: []string{"Celeste", "portal"}, Count: 2}, r.People["Ksyshenka"])
	assert.Equal(t, &Person{List: []string{"alan wake", "Zelda"}, Count: 2}, r.People["Bob"])
	assert.Equal(t, 1, r.People["anna"].Count)
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Monogatari Bake (Смотрим)", Title(strp("Смотрим"), strp("Monogatari"), strp("Bake")))
	assert.Equal(t, "Bake", Title(strp(""), nil, strp("Bake")))
}
