package dto

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	MsgInvalidLimit  = "Le paramètre limit doit être entre 1 et 100"
	MsgInvalidOffset = "Le paramètre offset doit être >= 0"
)

// BindFeedQuery reads and validates sort, limit and offset. sorts lists the accepted
// sort values; an empty list skips the sort check. It writes the 400 itself and
// reports whether the handler may continue.
func BindFeedQuery(c *gin.Context, sorts ...string) (FeedQuery, bool) {
	q := FeedQuery{Sort: c.DefaultQuery("sort", "recent"), Limit: 20}

	if len(sorts) > 0 && !contains(sorts, q.Sort) {
		quoted := make([]string, len(sorts))
		for i, s := range sorts {
			quoted[i] = strconv.Quote(s)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Le paramètre sort doit être %s", strings.Join(quoted, " ou "))})
		return q, false
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": MsgInvalidLimit})
			return q, false
		}
		q.Limit = limit
	}

	if raw := c.Query("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": MsgInvalidOffset})
			return q, false
		}
		q.Offset = offset
	}

	return q, true
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
