package repository

import (
	"github.com/doug-martin/goqu/v9"
)

// Filter collects optional equality conditions keyed by logical field name.
// BuildConditions maps each key through the caller's aliases.
type Filter struct {
	conditions map[string]interface{}
}

func NewFilter() *Filter {
	return &Filter{
		conditions: make(map[string]interface{}),
	}
}

func (f *Filter) Equal(key string, value interface{}) *Filter {
	f.conditions[key] = value
	return f
}

// EqualInt adds the condition only when value is set.
func (f *Filter) EqualInt(key string, value *int) *Filter {
	if value != nil {
		f.conditions[key] = *value
	}
	return f
}

func (f *Filter) BuildConditions(aliases map[string]string) goqu.Ex {
	conditions := goqu.Ex{}
	for key, value := range f.conditions {
		if alias, ok := aliases[key]; ok {
			conditions[alias] = value
		} else {
			conditions[key] = value
		}
	}
	return conditions
}
