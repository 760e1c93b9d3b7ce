package toml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type details struct {
	Location string `toml:"location"`
}

type person struct {
	Name       string    `toml:"name"`
	Age        int       `toml:"age"`
	Details    *details  `toml:"details"`
	DetailList []details `toml:"details_list"`
}

func TestToml(t *testing.T) {
	enc := NewEncoder()
	p := person{
		Name:       "Syd Xu",
		Age:        24,
		Details:    &details{Location: "Beijing"},
		DetailList: []details{{Location: "Paris"}},
	}
	bs, err := enc.Marshal(p)
	require.NoError(t, err)

	exp := `name = "Syd Xu"
age = 24

[details]
  location = "Beijing"

[[details_list]]
  location = "Paris"
`
	assert.Equal(t, exp, string(bs))

	var p2 person
	require.NoError(t, enc.Unmarshal([]byte("```toml\n"+string(bs)+"```"), &p2))
	assert.Equal(t, p, p2)
}
