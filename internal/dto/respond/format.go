package respond

import "strconv"

func formatId(id int64) string {
	return strconv.FormatInt(id, 10)
}
