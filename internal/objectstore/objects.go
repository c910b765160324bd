package objectstore

import "time"

// treeBlobName is the fixed name every per-commit tree holds its content
// blob under. Trees never hold more than this one entry — promotion never
// auto-merges trees, it just reuses the origin's tree id wholesale — so a
// name-keyed tree object is a format choice, not a real directory.
const treeBlobName = "content"

// Author identifies who created a commit.
type Author struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// treeObject is the on-disk form of a tree: exactly one named blob.
type treeObject struct {
	V     int               `json:"v"`
	Entry map[string]string `json:"entries"` // name -> blob id
}

// Commit is the on-disk form of a commit: a snapshot of one tree, with
// zero, one, or two parents (spec.md §6).
type Commit struct {
	V         int       `json:"v"`
	Tree      ID        `json:"tree"`
	Parents   []ID      `json:"parents,omitempty"`
	Author    Author    `json:"author"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
