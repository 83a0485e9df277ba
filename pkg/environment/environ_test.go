package environment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromEnviron(t *testing.T) {
	env := FromEnviron([]string{
		"HOME=/home/me",
		"EMPTY=",
		"EQ=a=b",
		"=C:=C:\\work",
		"NOSEPARATOR",
		"",
		"HOME=/override",
	})

	assert.Equal(t, map[string]string{
		"HOME":  "/override",
		"EMPTY": "",
		"EQ":    "a=b",
		"=C:":   "C:\\work",
	}, env)
}

func TestToEnviron_Sorted(t *testing.T) {
	out := ToEnviron(map[string]string{"B": "2", "A": "1", "C": ""})
	assert.Equal(t, []string{"A=1", "B=2", "C="}, out)
}

func TestEnvironRoundTrip(t *testing.T) {
	in := []string{"A=1", "B=x=y"}
	assert.Equal(t, in, ToEnviron(FromEnviron(in)))
}

func TestSubset(t *testing.T) {
	env := map[string]string{"A": "1", "B": "2"}
	assert.Equal(t, map[string]string{"A": "1"}, Subset(env, []string{"A", "MISSING"}))
}
