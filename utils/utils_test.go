package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	ict := time.FixedZone("ICT", 7*60*60)
	d, err := ParseDate(" 2024-06-01 ", ict)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, ict), d)

	_, err = ParseDate("06/01/2024", ict)
	assert.Error(t, err)
}

func TestParseDateTime(t *testing.T) {
	ict := time.FixedZone("ICT", 7*60*60)

	d, err := ParseDateTime("2024-06-01T10:00", ict)
	require.NoError(t, err)
	assert.True(t, d.Equal(time.Date(2024, 6, 1, 3, 0, 0, 0, time.UTC)))

	d, err = ParseDateTime("2024-06-01T10:00:00Z", ict)
	require.NoError(t, err)
	assert.True(t, d.Equal(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)))

	_, err = ParseDateTime("tomorrow", ict)
	assert.Error(t, err)
}

func TestParseIDList(t *testing.T) {
	ids, err := ParseIDList("3, 1,2")
	require.NoError(t, err)
	assert.Equal(t, []uint{3, 1, 2}, ids)

	ids, err = ParseIDList("")
	require.NoError(t, err)
	assert.Nil(t, ids)

	for _, bad := range []string{"1,x", "0", "-1", "1.5"} {
		_, err := ParseIDList(bad)
		assert.Error(t, err, bad)
	}
}

func TestJSONError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	JSONError(c, http.StatusBadRequest, "INVALID_RANGE", "start is after end", gin.H{"start": "2024-06-05"})

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	errBody := body["error"].(map[string]interface{})
	assert.Equal(t, "INVALID_RANGE", errBody["code"])
	assert.Equal(t, map[string]interface{}{"start": "2024-06-05"}, errBody["details"])
}

func TestRegisterValidators(t *testing.T) {
	RegisterValidators()
	RegisterValidators()

	type payload struct {
		NoteType string `binding:"required,notetype"`
		Status   string `binding:"omitempty,bookingstatus"`
	}
	assert.NoError(t, binding.Validator.ValidateStruct(payload{NoteType: "blocked", Status: "pending"}))
	assert.Error(t, binding.Validator.ValidateStruct(payload{NoteType: "holiday"}))
	assert.Error(t, binding.Validator.ValidateStruct(payload{NoteType: "general", Status: "lost"}))
}
