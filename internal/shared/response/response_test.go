package response_test

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-lcms/internal/shared/apperror"
	"go-lcms/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	page, meta := response.Paginate(items, 2, 2)
	assert.Equal(t, []int{3, 4}, page)
	assert.Equal(t, int64(5), meta.Total)
	assert.Equal(t, 3, meta.TotalPages)

	page, meta = response.Paginate(items, 9, 2)
	assert.Empty(t, page)
	assert.Equal(t, 9, meta.Page)

	page, _ = response.Paginate(items, 0, 0)
	assert.Equal(t, items, page)
}

func TestPaginate_OversizedInput(t *testing.T) {
	items := []int{1, 2, 3}

	t.Run("huge page", func(t *testing.T) {
		var page []int
		assert.NotPanics(t, func() { page, _ = response.Paginate(items, math.MaxInt64, 10) })
		assert.Empty(t, page)
	})

	t.Run("huge page size is clamped", func(t *testing.T) {
		var (
			page []int
			meta response.PaginationMeta
		)
		assert.NotPanics(t, func() { page, meta = response.Paginate(items, 3, math.MaxInt64/2) })
		assert.Empty(t, page)
		assert.Equal(t, response.MaxPageSize, meta.PageSize)
		assert.Equal(t, 1, meta.TotalPages)
	})

	t.Run("clamped first page returns everything", func(t *testing.T) {
		page, meta := response.Paginate(items, 1, 5000)
		assert.Equal(t, items, page)
		assert.Equal(t, response.MaxPageSize, meta.PageSize)
	})
}

func TestAbortWithError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	response.AbortWithError(c, apperror.ErrForbidden)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusForbidden, w.Code)

	var env struct {
		Ok    bool `json:"ok"`
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.False(t, env.Ok)
	assert.Equal(t, apperror.CodeForbidden, env.Error.Code)
}
