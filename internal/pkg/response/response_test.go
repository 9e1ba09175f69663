package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(handler gin.HandlerFunc) *httptest.ResponseRecorder {
	router := gin.New()
	router.GET("/test", handler)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", nil)
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSuccess(t *testing.T) {
	w := perform(func(c *gin.Context) {
		Success(c, gin.H{"value": 1})
	})

	resp := decode(t, w)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, CodeSuccess, resp.Code)
	assert.Equal(t, "success", resp.Message)
	assert.NotNil(t, resp.Data)
}

func TestError_DefaultMessage(t *testing.T) {
	w := perform(func(c *gin.Context) {
		Error(c, CodeResourceNotFound, "")
	})

	resp := decode(t, w)
	assert.Equal(t, CodeResourceNotFound, resp.Code)
	assert.Equal(t, codeMessages[CodeResourceNotFound], resp.Message)
}

func TestError_CustomMessage(t *testing.T) {
	w := perform(func(c *gin.Context) {
		AlreadyPurchasedError(c, "该内容已购买，无需重复支付")
	})

	resp := decode(t, w)
	assert.Equal(t, CodeAlreadyPurchased, resp.Code)
	assert.Equal(t, "该内容已购买，无需重复支付", resp.Message)
}

func TestSuccessPage(t *testing.T) {
	w := perform(func(c *gin.Context) {
		SuccessPage(c, 42, 0, 20, []string{"a", "b"})
	})

	resp := decode(t, w)
	assert.Equal(t, CodeSuccess, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 42, data["total"])
	assert.EqualValues(t, 20, data["limit"])
}
