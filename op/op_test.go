package op

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetInfo(t *testing.T) {
	info := GetInfo(IfNotTrueJump)
	require.Equal(t, "if_not_true_jump", info.Name)
	require.Equal(t, 1, info.OperandCount)
	require.Equal(t, IfNotTrueJump, info.Code)
}

func TestGetInfoAllOpcodes(t *testing.T) {
	tests := []struct {
		code     Code
		name     string
		operands int
	}{
		{Push, "push", 1},
		{PushLambda, "push_lambda", 1},
		{Pop, "pop", 0},
		{ArgStart, "arg_start", 0},
		{GetEnv, "get_env", 1},
		{SetEnv, "set_env", 1},
		{Invoke, "invoke", 1},
		{Return, "return", 0},
		{IfNotTrueJump, "if_not_true_jump", 1},
		{Jump, "jump", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := GetInfo(tt.code)
			require.Equal(t, tt.name, info.Name)
			require.Equal(t, tt.operands, info.OperandCount)
			require.Equal(t, tt.code, info.Code)

			code, ok := Lookup(tt.name)
			require.True(t, ok)
			require.Equal(t, tt.code, code)
			require.Equal(t, tt.name, code.String())
		})
	}
}

func TestLookupUnknown(t *testing.T) {
	_, ok := Lookup("load_fast")
	require.False(t, ok)
	require.Equal(t, "invalid", Invalid.String())
}
