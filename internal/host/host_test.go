package host

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlatformUnix(t *testing.T) {
	assert.True(t, Linux.Unix())
	assert.True(t, Darwin.Unix())
	assert.True(t, Platform("freebsd").Unix())
	assert.False(t, Windows.Unix())
	assert.False(t, Platform("plan9").Unix())
	assert.False(t, Platform("js").Unix())
}

func TestCurrent(t *testing.T) {
	assert.Equal(t, runtime.GOOS, Current().String())
}

func TestPrivilegeFunc(t *testing.T) {
	calls := 0
	p := PrivilegeFunc(func() bool {
		calls++
		return calls > 1
	})

	assert.False(t, p.IsElevated())
	assert.True(t, p.IsElevated(), "answer must be recomputed per call")
	assert.Equal(t, 2, calls)
}

func TestSystemPrivilegeDoesNotPanic(t *testing.T) {
	_ = SystemPrivilege().IsElevated()
}

func TestSystemInputUnsupportedOffWindows(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("BlockInput is real on windows")
	}
	assert.ErrorIs(t, SystemInput().BlockInput(true), ErrUnsupported)
}
