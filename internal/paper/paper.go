// Package paper defines the paper entity draft produced by entry scrapers.
package paper

import (
	"strings"
	"time"
)

// Publication type codes stored in Entity.PubType.
const (
	PubTypeJournal    = 0
	PubTypeConference = 1
	PubTypeOthers     = 2
	PubTypeBook       = 3
)

// AuthorSeparator joins author names in Entity.Authors.
const AuthorSeparator = ", "

// Entity is an unpersisted paper record. Field JSON names are part of the
// wire format shared with the host library and must not change.
type Entity struct {
	// Identity
	ObjectID  string    `json:"_id"`
	ID        string    `json:"id"`
	Partition string    `json:"_partition"`
	AddTime   time.Time `json:"addTime"`

	// Bibliographic metadata
	Title       string `json:"title"`
	Authors     string `json:"authors"`
	Publication string `json:"publication"`
	PubTime     string `json:"pubTime"`
	PubType     int    `json:"pubType"`
	DOI         string `json:"doi"`
	Arxiv       string `json:"arxiv"`

	// File locators
	MainURL string   `json:"mainURL"`
	SupURLs []string `json:"supURLs"`

	// User fields
	Rating  int      `json:"rating"`
	Tags    []Tag    `json:"tags"`
	Folders []Folder `json:"folders"`
	Flag    bool     `json:"flag"`
	Note    string   `json:"note"`
	Codes   []string `json:"codes"`

	Pages     string `json:"pages"`
	Volume    string `json:"volume"`
	Number    string `json:"number"`
	Publisher string `json:"publisher"`
}

// schemaFields lists the entity's wire field names in schema order.
var schemaFields = []string{
	"id",
	"_id",
	"_partition",
	"addTime",
	"title",
	"authors",
	"publication",
	"pubTime",
	"pubType",
	"doi",
	"arxiv",
	"mainURL",
	"supURLs",
	"rating",
	"tags",
	"folders",
	"flag",
	"note",
	"codes",
	"pages",
	"volume",
	"number",
	"publisher",
}

// SchemaFields returns the wire names of every entity field.
// A structured entity payload must carry all of them.
func SchemaFields() []string {
	fields := make([]string, len(schemaFields))
	copy(fields, schemaFields)
	return fields
}

// New creates an empty draft. When withID is true, fresh object ids are
// assigned to both identity fields; otherwise the draft has no identity.
func New(withID bool) *Entity {
	e := &Entity{
		AddTime: time.Now(),
		SupURLs: []string{},
		Tags:    []Tag{},
		Folders: []Folder{},
		Codes:   []string{},
	}
	if withID {
		id := NewObjectID()
		e.ObjectID = id
		e.ID = id
	}
	return e
}

// Initialize copies every field of src into e, including identity.
// Lists and categorizers are deep-copied.
func (e *Entity) Initialize(src *Entity) *Entity {
	e.ObjectID = src.ObjectID
	e.ID = src.ID
	e.Partition = src.Partition
	e.AddTime = src.AddTime
	e.Title = src.Title
	e.Authors = src.Authors
	e.Publication = src.Publication
	e.PubTime = src.PubTime
	e.PubType = src.PubType
	e.DOI = src.DOI
	e.Arxiv = src.Arxiv
	e.MainURL = src.MainURL
	e.SupURLs = copyStrings(src.SupURLs)
	e.Rating = src.Rating
	e.Tags = copyTags(src.Tags)
	e.Folders = copyFolders(src.Folders)
	e.Flag = src.Flag
	e.Note = src.Note
	e.Codes = copyStrings(src.Codes)
	e.Pages = src.Pages
	e.Volume = src.Volume
	e.Number = src.Number
	e.Publisher = src.Publisher
	return e
}

// Clone returns a deep copy of e.
func (e *Entity) Clone() *Entity {
	return (&Entity{}).Initialize(e)
}

// AuthorList splits the delimited author string into names.
func (e *Entity) AuthorList() []string {
	return SplitAuthors(e.Authors)
}

// JoinAuthors joins author names into the delimited form stored on a draft.
// Blank names are dropped.
func JoinAuthors(names []string) string {
	kept := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n != "" {
			kept = append(kept, n)
		}
	}
	return strings.Join(kept, AuthorSeparator)
}

// SplitAuthors is the inverse of JoinAuthors.
func SplitAuthors(authors string) []string {
	if strings.TrimSpace(authors) == "" {
		return nil
	}
	parts := strings.Split(authors, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, p)
		}
	}
	return names
}

func copyStrings(src []string) []string {
	dst := make([]string, len(src))
	copy(dst, src)
	return dst
}
