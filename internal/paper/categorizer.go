package paper

// Categorizer is a lightweight reference to a tag or folder, identified by name.
// A draft owns its own copies; the host library stays the authority.
type Categorizer struct {
	ObjectID  string `json:"_id"`
	ID        string `json:"id"`
	Partition string `json:"_partition"`
	Name      string `json:"name"`
	Count     int    `json:"count"`
	Color     string `json:"color,omitempty"`
}

// Tag classifies a paper.
type Tag Categorizer

// Folder groups papers.
type Folder Categorizer

// NewTag returns a tag reference with the given name.
func NewTag(name string, count int) Tag {
	return Tag{Name: name, Count: count}
}

// NewFolder returns a folder reference with the given name.
func NewFolder(name string, count int) Folder {
	return Folder{Name: name, Count: count}
}

func copyTags(src []Tag) []Tag {
	dst := make([]Tag, len(src))
	copy(dst, src)
	return dst
}

func copyFolders(src []Folder) []Folder {
	dst := make([]Folder, len(src))
	copy(dst, src)
	return dst
}
