package playback

// SupplementKind enumerates the auxiliary panels attachable to a session.
type SupplementKind string

const (
	SupplementChapters SupplementKind = "chapters"
	SupplementExtras   SupplementKind = "extras"
	SupplementRelated  SupplementKind = "related"
)

// Supplement is an auxiliary panel associated with the current item, such as
// its chapter list or related items. The set can grow after the session
// starts; chapters in particular arrive with the full item refresh.
type Supplement struct {
	ID    string
	Kind  SupplementKind
	Title string
}
