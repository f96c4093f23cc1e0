package naming

import (
	"regexp"
	"sort"
	"strings"
)

// Option 是一个有序的选项条目，Args 为 nil 时编码为 -name。
type Option struct {
	Name string
	Args []string
}

// Flag 构造无参数选项，例如 Flag("resize")。
func Flag(name string) Option {
	return Option{Name: name}
}

// With 构造带参数选项，例如 With("quadrant", "T")。
func With(name string, args ...string) Option {
	return Option{Name: name, Args: append([]string{}, args...)}
}

func (o Option) String() string {
	if len(o.Args) == 0 {
		return o.Name
	}
	return o.Name + "(" + strings.Join(o.Args, ",") + ")"
}

// Options 以选项名为键，值为原始参数列表；nil 表示无参数。
type Options map[string][]string

// Has 判断选项是否出现过。
func (o Options) Has(name string) bool {
	_, ok := o[name]
	return ok
}

// Args 返回选项参数，未出现或无参数时返回 nil。
func (o Options) Args(name string) []string {
	return o[name]
}

// Len 返回选项数量。
func (o Options) Len() int {
	return len(o)
}

// Names 返回按字典序排列的选项名，便于日志输出。
func (o Options) Names() []string {
	names := make([]string, 0, len(o))
	for name := range o {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var optionFragment = regexp.MustCompile(`^(\w+)(?:\(([\w,.]+)\))?$`)

// ParseOption 解析单个 name 或 name(a,b) 片段，不合法时返回 false。
func ParseOption(fragment string) (Option, bool) {
	m := optionFragment.FindStringSubmatch(fragment)
	if m == nil {
		return Option{}, false
	}
	if m[2] == "" {
		return Flag(m[1]), true
	}
	return With(m[1], strings.Split(m[2], ",")...), true
}

// ParseOptions 解析形如 "-quadrant(T)-resize" 的原始后缀。
// 不符合 name 或 name(args) 形态的片段被静默丢弃，同名选项以最后一次出现为准。
func ParseOptions(raw string) Options {
	opts := Options{}
	for _, fragment := range strings.Split(raw, "-") {
		opt, ok := ParseOption(fragment)
		if !ok {
			continue
		}
		opts[opt.Name] = opt.Args
	}
	return opts
}
