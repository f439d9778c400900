package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestControlKind(t *testing.T) {
	k := ControlKind("sleep")
	assert.Equal(t, Kind("session-control:sleep"), k)
	assert.True(t, k.IsControl())
	assert.Equal(t, "sleep", k.ControlAction())
}

func TestExecuteAndSpeakAreNotControl(t *testing.T) {
	assert.False(t, KindExecute.IsControl())
	assert.False(t, KindSpeak.IsControl())
	assert.Empty(t, KindExecute.ControlAction())
}

func TestDangerous(t *testing.T) {
	tests := []struct {
		command string
		pattern string
	}{
		{"rm -rf /", "rm -rf /"},
		{"sudo rm -rf /var/log", "sudo rm -rf"},
		{"mkfs.ext4 /dev/sdb1", "mkfs"},
		{"cat zeros > /dev/sda", "> /dev/sda"},
		{"dd if=/dev/zero of=/dev/sda", "dd if="},
		{"chmod -R 777 /", "chmod -r 777 /"},
		{"echo FORMAT the drive", "format"},
		{"ls -la", ""},
		{"rm -rf ./build", ""},
		{"git status", ""},
	}
	for _, tt := range tests {
		pattern, bad := Dangerous(tt.command)
		assert.Equal(t, tt.pattern, pattern, tt.command)
		assert.Equal(t, tt.pattern != "", bad, tt.command)
	}
}
