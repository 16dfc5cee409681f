package script

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	swerrors "github.com/mrz1836/stepwire/internal/errors"
)

func TestParamType(t *testing.T) {
	tests := []struct {
		name string
		want reflect.Type
	}{
		{"", reflect.TypeFor[string]()},
		{"int", reflect.TypeFor[int]()},
		{" float ", reflect.TypeFor[float64]()},
		{"duration", reflect.TypeFor[time.Duration]()},
		{"[]int", reflect.TypeFor[[]int]()},
		{"[]", reflect.TypeFor[[]string]()},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := paramType(tc.name)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParamType_Errors(t *testing.T) {
	for _, name := range []string{"money", "[][]int", "[]money"} {
		_, err := paramType(name)
		require.ErrorIs(t, err, swerrors.ErrConfiguration, name)
	}
}
