package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFilePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
		errMsg  string
	}{
		{name: "relative database path", path: "data/recruitdesk.db"},
		{name: "absolute volume path", path: "/var/lib/recruitdesk/audit.db"},
		{name: "dot in filename", path: "config/recruitdesk.config.yaml"},
		{name: "dots inside a segment", path: "data/..audit.db"},
		{name: "empty path", path: "", wantErr: true, errMsg: "cannot be empty"},
		{name: "blank path", path: "   ", wantErr: true, errMsg: "cannot be empty"},
		{name: "NUL byte", path: "audit\x00.db", wantErr: true, errMsg: "NUL byte"},
		{name: "leading traversal", path: "../../../etc/passwd", wantErr: true, errMsg: "directory traversal"},
		{name: "embedded traversal", path: "data/../../etc/passwd", wantErr: true, errMsg: "directory traversal"},
		{name: "traversal in absolute path", path: "/var/lib/../../etc/shadow", wantErr: true, errMsg: "directory traversal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFilePath(tt.path)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			assert.NoError(t, err)
		})
	}
}
