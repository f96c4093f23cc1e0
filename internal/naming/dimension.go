package naming

import "strconv"

// Dimension 表示目标宽或高，Wildcard 表示按比例自适应。
type Dimension int

// Wildcard 在文件名中编码为 "_"。
const Wildcard Dimension = 0

const wildcardMarker = "_"

// IsWildcard 返回该维度是否未指定。
func (d Dimension) IsWildcard() bool {
	return d <= 0
}

// Pixels 返回具体像素值，Wildcard 返回 0。
func (d Dimension) Pixels() int {
	if d.IsWildcard() {
		return 0
	}
	return int(d)
}

func (d Dimension) String() string {
	if d.IsWildcard() {
		return wildcardMarker
	}
	return strconv.Itoa(int(d))
}

// parseDimension 解析文件名中的数字组；空串和 "_" 均视为 Wildcard。
func parseDimension(raw string) (Dimension, bool) {
	if raw == "" || raw == wildcardMarker {
		return Wildcard, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return Wildcard, false
	}
	return Dimension(n), true
}
