package clickup

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_IsMatchesKindOnly(t *testing.T) {
	t.Parallel()

	sentinels := map[ErrorKind]error{
		KindOther:              ErrOther,
		KindAuthentication:     ErrAuthentication,
		KindShardRouting:       ErrShardRouting,
		KindTransientExhausted: ErrTransientExhausted,
	}

	for kind, want := range sentinels {
		err := fmt.Errorf("fetch tasks: %w", &APIError{Kind: kind, URL: "https://api.clickup.com/api/v2/team"})
		for other, sentinel := range sentinels {
			if other == kind {
				assert.ErrorIs(t, err, want, kind.String())
			} else {
				assert.NotErrorIs(t, err, sentinel, "%s must not match %s", kind, other)
			}
		}
	}
}

func TestAPIError_UnwrapsCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("invalid character")
	err := &APIError{Kind: KindOther, Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrOther)
}

func TestAPIError_BatchFatal(t *testing.T) {
	t.Parallel()

	assert.True(t, (&APIError{Kind: KindAuthentication}).BatchFatal())
	assert.True(t, (&APIError{Kind: KindShardRouting}).BatchFatal())
	assert.False(t, (&APIError{Kind: KindOther}).BatchFatal())
	assert.False(t, (&APIError{Kind: KindTransientExhausted}).BatchFatal())

	assert.True(t, IsBatchFatal(fmt.Errorf("wrapped: %w", &APIError{Kind: KindShardRouting})))
	assert.False(t, IsBatchFatal(errors.New("plain")))
	assert.False(t, IsBatchFatal(nil))
}

func TestAPIError_Messages(t *testing.T) {
	t.Parallel()

	shard := &APIError{
		Kind:       KindShardRouting,
		URL:        "https://api.clickup.com/api/v2/team/9/space",
		StatusCode: 404,
		Code:       "SHARD_006",
	}
	msg := shard.Error()
	assert.Contains(t, msg, "SHARD_006")
	assert.Contains(t, msg, "verify the workspace")
	assert.Contains(t, msg, "status=404")

	auth := &APIError{Kind: KindAuthentication, StatusCode: 401, Body: "Token invalid"}
	assert.Contains(t, auth.Error(), "authentication failed")
	assert.NotContains(t, auth.Error(), "Token invalid")

	exhausted := &APIError{Kind: KindTransientExhausted, Attempts: 3, URL: "u", StatusCode: 503}
	assert.Contains(t, exhausted.Error(), "after 3 attempts")

	other := &APIError{Kind: KindOther, URL: "u", StatusCode: 404, Code: "RESOURCE_NOT_FOUND", Body: "missing"}
	assert.Contains(t, other.Error(), "code=RESOURCE_NOT_FOUND")
	assert.Contains(t, other.Error(), "missing")
}

func TestErrorKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "other", KindOther.String())
	assert.Equal(t, "authentication", KindAuthentication.String())
	assert.Equal(t, "shard_routing", KindShardRouting.String())
	assert.Equal(t, "transient_exhausted", KindTransientExhausted.String())
}

func TestErrorCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "SHARD_006", errorCode([]byte(`{"err":"x","ECODE":"SHARD_006"}`)))
	assert.Equal(t, "", errorCode([]byte(`<html>bad gateway</html>`)))
	assert.Equal(t, "", errorCode(nil))

	var apiErr *APIError
	require.False(t, errors.As(errors.New("x"), &apiErr))
}
