package shared

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const queryDateLayout = "2006-01-02"

// ParsePathUint 解析路径中的正整数 ID
func ParsePathUint(c *gin.Context, key string) (uint, bool) {
	raw := strings.TrimSpace(c.Param(key))
	if raw == "" {
		return 0, false
	}
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || parsed == 0 {
		return 0, false
	}
	return uint(parsed), true
}

// ParseQueryUint 解析可选的查询参数，非法或缺失时返回 0
func ParseQueryUint(c *gin.Context, key string) uint {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0
	}
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return uint(parsed)
}

// ParsePageQuery 读取并归一化分页参数
func ParsePageQuery(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return NormalizePagination(page, pageSize)
}

// ParseDateRangeQuery 解析 start_date / end_date（YYYY-MM-DD），结束日期包含当天
func ParseDateRangeQuery(c *gin.Context) (*time.Time, *time.Time, bool) {
	var from, to *time.Time
	if raw := strings.TrimSpace(c.Query("start_date")); raw != "" {
		parsed, err := time.ParseInLocation(queryDateLayout, raw, time.Local)
		if err != nil {
			return nil, nil, false
		}
		from = &parsed
	}
	if raw := strings.TrimSpace(c.Query("end_date")); raw != "" {
		parsed, err := time.ParseInLocation(queryDateLayout, raw, time.Local)
		if err != nil {
			return nil, nil, false
		}
		end := parsed.AddDate(0, 0, 1).Add(-time.Nanosecond)
		to = &end
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, false
	}
	return from, to, true
}
