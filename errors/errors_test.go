package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(CodeNotFound, "no such path")

	assert.Equal(t, CodeNotFound, err.Code())
	assert.Equal(t, ClassificationPermanent, err.Classification())
	assert.Equal(t, "[NOT_FOUND] no such path", err.Error())
	assert.Nil(t, err.Context())
	assert.Nil(t, err.Unwrap())
}

func TestNewf(t *testing.T) {
	err := Newf(CodeInvalidInput, "bad segment %q", "..")
	assert.Equal(t, `bad segment ".."`, err.Message())
}

func TestClassificationDefaults(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want ErrorClassification
	}{
		{CodePermissionMissing, ClassificationRetryable},
		{CodeTimeout, ClassificationRetryable},
		{CodeUnavailable, ClassificationRetryable},
		{CodeNotFound, ClassificationPermanent},
		{CodePartialFailure, ClassificationPermanent},
		{ErrorCode("SOMETHING_NEW"), ClassificationPermanent},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.code, "x").Classification())
		})
	}
}

func TestWrap(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		assert.Nil(t, Wrap(nil, CodeIO, "read failed"))
		assert.Nil(t, Wrapf(nil, CodeIO, "read %s", "x"))
	})

	t.Run("preserves chain", func(t *testing.T) {
		cause := stderrors.New("broken pipe")
		err := Wrap(cause, CodeIO, "write failed")

		assert.True(t, Is(err, cause))
		assert.Equal(t, "[IO_FAILURE] write failed: broken pipe", err.Error())
	})

	t.Run("inherits classification", func(t *testing.T) {
		inner := New(CodePermissionMissing, "no grant")
		err := Wrap(inner, CodePartialFailure, "copy aborted")

		assert.Equal(t, CodePartialFailure, err.Code())
		assert.True(t, IsRetryable(err))
		assert.True(t, IsPermissionMissing(err))
	})
}

func TestWithContext(t *testing.T) {
	base := New(CodeNotFound, "missing")
	withPath := WithContext(base, "path", "/a")
	withMore := WithContextMap(withPath, map[string]interface{}{"backend": "document"})

	assert.Nil(t, base.Context(), "original must not be mutated")
	assert.Equal(t, map[string]interface{}{"path": "/a"}, withPath.Context())
	assert.Equal(t, map[string]interface{}{"path": "/a", "backend": "document"}, withMore.Context())
	assert.Equal(t, CodeNotFound, withMore.Code())

	t.Run("promotes plain errors", func(t *testing.T) {
		err := WithContext(fmt.Errorf("plain"), "k", 1)
		assert.Equal(t, CodeUnknown, err.Code())
		assert.Equal(t, "plain", err.Message())
	})

	t.Run("context is a copy", func(t *testing.T) {
		ctx := withPath.Context()
		ctx["path"] = "/mutated"
		assert.Equal(t, "/a", withPath.Context()["path"])
	})
}

func TestWithClassification(t *testing.T) {
	err := WithClassification(New(CodeIO, "flaky"), ClassificationRetryable)
	assert.True(t, IsRetryable(err))
	assert.Equal(t, CodeIO, err.Code())
	assert.Nil(t, WithClassification(nil, ClassificationRetryable))
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, CodeUnknown, GetCode(nil))
	assert.Equal(t, CodeUnknown, GetCode(stderrors.New("plain")))
	assert.False(t, IsRetryable(stderrors.New("plain")))

	wrapped := fmt.Errorf("outer: %w", New(CodeNotFound, "gone"))
	assert.Equal(t, CodeNotFound, GetCode(wrapped))
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsPermissionMissing(wrapped))
}

func TestToJSON(t *testing.T) {
	assert.Nil(t, ToJSON(nil))

	err := WithContext(Wrap(stderrors.New("exit 1"), CodeExecutionFailed, "rm failed"), "exit_code", 1)
	resp := ToJSON(err)
	require.NotNil(t, resp)
	assert.Equal(t, "EXECUTION_FAILED", resp.Code)
	assert.Equal(t, "rm failed", resp.Message)
	assert.Equal(t, "PERMANENT", resp.Classification)
	assert.Equal(t, 1, resp.Context["exit_code"])

	plain := ToJSON(stderrors.New("boom"))
	assert.Equal(t, "UNKNOWN", plain.Code)
	assert.Equal(t, "boom", plain.Message)
}

func TestMarshalJSON(t *testing.T) {
	data, err := json.Marshal(WithContext(New(CodePermissionMissing, "grant pending"), "owner", "com.example"))
	require.NoError(t, err)

	var decoded ErrorResponse
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "PERMISSION_MISSING", decoded.Code)
	assert.Equal(t, "RETRYABLE", decoded.Classification)
	assert.Equal(t, "com.example", decoded.Context["owner"])
}
