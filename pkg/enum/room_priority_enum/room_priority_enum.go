package room_priority_enum

const (
	Low    = "low"
	Normal = "normal"
	High   = "high"
	Urgent = "urgent"
)

// Valid 判断是否为合法的优先级
func Valid(priority string) bool {
	switch priority {
	case Low, Normal, High, Urgent:
		return true
	}
	return false
}
