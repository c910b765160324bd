package content

// Item is a thin facade over a Content value. Where the original system
// exposed Content through dynamic attribute access (method_missing-style
// delegation), this forwards the small, enumerated set of operations
// spec.md §9 calls out explicitly, so callers get ergonomic field access
// without a Content needing any behavior of its own beyond the tagged
// variant.
type Item struct {
	value Content
}

// NewItem wraps a Content value in an Item facade.
func NewItem(c Content) Item { return Item{value: c} }

// Get looks up a single field by key, delegating to Content.Get.
func (i Item) Get(key string) (Item, bool) {
	v, ok := i.value.Get(key)
	return Item{value: v}, ok
}

// Set returns a new Item with key bound to val's underlying Content.
func (i Item) Set(key string, val Item) Item {
	return Item{value: i.value.Set(key, val.value)}
}

// DeleteField returns a new Item with key removed.
func (i Item) DeleteField(key string) Item {
	return Item{value: i.value.DeleteField(key)}
}

// Content returns the underlying Content value.
func (i Item) Content() Content { return i.value }

// ToJSON serializes the wrapped Content.
func (i Item) ToJSON() ([]byte, error) { return Serialize(i.value) }

// FromJSON parses data into a new Item.
func FromJSON(data []byte) (Item, error) {
	c, err := Parse(data)
	if err != nil {
		return Item{}, err
	}
	return Item{value: c}, nil
}
