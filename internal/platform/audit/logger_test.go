package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_IncludesActor(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(zerolog.New(&buf))

	ctx := WithActor(context.Background(), Actor{Email: "admin@example.com", TenantID: "t1", IP: "10.0.0.1"})
	l.Log(ctx, "tenant.delete", "tenant", "t2", map[string]interface{}{"slug": "ACME"})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "tenant.delete", entry["action"])
	assert.Equal(t, "admin@example.com", entry["actor"])
	assert.Equal(t, "ACME", entry["slug"])
	assert.Equal(t, "audit", entry["component"])
}
