package metrics

import (
	"sort"
	"strconv"
	"strings"
)

// Tag keys shared by the user, admin and session series.
const (
	TagRealm    = "realm"
	TagClientID = "client_id"
	TagProvider = "provider"
	TagError    = "error"
	TagResource = "resource"
)

// Tag is a single label key/value pair.
type Tag struct {
	Key   string
	Value string
}

// Tags is a tag set ordered by key. Keys are unique.
type Tags []Tag

// NewTags builds a tag set from alternating key/value arguments. A dangling
// key gets an empty value and a repeated key keeps its last value.
func NewTags(kv ...string) Tags {
	m := make(map[string]string, (len(kv)+1)/2)
	for i := 0; i < len(kv); i += 2 {
		value := ""
		if i+1 < len(kv) {
			value = kv[i+1]
		}
		m[kv[i]] = value
	}
	return TagsFromMap(m)
}

// TagsFromMap converts a label map into an ordered tag set.
func TagsFromMap(m map[string]string) Tags {
	tags := make(Tags, 0, len(m))
	for k, v := range m {
		tags = append(tags, Tag{Key: k, Value: v})
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Key < tags[j].Key })
	return tags
}

// With returns a copy of t with key set to value.
func (t Tags) With(key, value string) Tags {
	m := t.Map()
	m[key] = value
	return TagsFromMap(m)
}

// Keys returns the tag keys in order.
func (t Tags) Keys() []string {
	keys := make([]string, len(t))
	for i, tag := range t {
		keys[i] = tag.Key
	}
	return keys
}

// Values returns the tag values in key order.
func (t Tags) Values() []string {
	values := make([]string, len(t))
	for i, tag := range t {
		values[i] = tag.Value
	}
	return values
}

// Map returns the tags as a label map.
func (t Tags) Map() map[string]string {
	m := make(map[string]string, len(t))
	for _, tag := range t {
		m[tag.Key] = tag.Value
	}
	return m
}

// Equal reports whether both sets hold the same pairs.
func (t Tags) Equal(o Tags) bool {
	if len(t) != len(o) {
		return false
	}
	for i := range t {
		if t[i] != o[i] {
			return false
		}
	}
	return true
}

// key encodes the tag set unambiguously for map lookups.
func (t Tags) key() string {
	var b strings.Builder
	for _, tag := range t {
		b.WriteString(strconv.Quote(tag.Key))
		b.WriteByte('=')
		b.WriteString(strconv.Quote(tag.Value))
		b.WriteByte(',')
	}
	return b.String()
}

// Identity names one series: a metric name plus its full tag set.
type Identity struct {
	Name string
	Tags Tags
}

// Key is a canonical encoding; two identities are equal iff their keys are.
func (id Identity) Key() string {
	return strconv.Quote(id.Name) + "{" + id.Tags.key() + "}"
}

// Equal compares name and the complete tag set.
func (id Identity) Equal(o Identity) bool {
	return id.Name == o.Name && id.Tags.Equal(o.Tags)
}

// String renders the identity in exposition style, e.g. name{realm="r"}.
func (id Identity) String() string {
	var b strings.Builder
	b.WriteString(id.Name)
	b.WriteByte('{')
	for i, tag := range id.Tags {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(tag.Key)
		b.WriteByte('=')
		b.WriteString(strconv.Quote(tag.Value))
	}
	b.WriteByte('}')
	return b.String()
}
