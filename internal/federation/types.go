package federation

import "github.com/samber/lo"

const (
	TypeNote     = "Note"
	TypeQuestion = "Question"
	TypeArticle  = "Article"
	TypeAudio    = "Audio"
	TypeDocument = "Document"
	TypeImage    = "Image"
	TypePage     = "Page"
	TypeVideo    = "Video"

	TypeCreate   = "Create"
	TypeDelete   = "Delete"
	TypeUpdate   = "Update"
	TypeUndo     = "Undo"
	TypeFollow   = "Follow"
	TypeAccept   = "Accept"
	TypeReject   = "Reject"
	TypeAdd      = "Add"
	TypeRemove   = "Remove"
	TypeLike     = "Like"
	TypeAnnounce = "Announce"
	TypeBlock    = "Block"

	TypeTombstone     = "Tombstone"
	TypePerson        = "Person"
	TypeService       = "Service"
	TypeEmoji         = "Emoji"
	TypeHashtag       = "Hashtag"
	TypePropertyValue = "PropertyValue"

	TypeCollection            = "Collection"
	TypeOrderedCollection     = "OrderedCollection"
	TypeCollectionPage        = "CollectionPage"
	TypeOrderedCollectionPage = "OrderedCollectionPage"
)

var noteTypes = []string{
	TypeNote, TypeQuestion, TypeArticle, TypeAudio,
	TypeDocument, TypeImage, TypePage, TypeVideo,
}

var documentTypes = []string{TypeAudio, TypeDocument, TypeImage, TypePage, TypeVideo}

var activityTypes = []string{
	TypeCreate, TypeDelete, TypeUpdate, TypeUndo, TypeFollow, TypeAccept,
	TypeReject, TypeAdd, TypeRemove, TypeLike, TypeAnnounce, TypeBlock,
}

// IsNote reports whether the object is one of the note-like variants that the
// ingestion pipeline can turn into a local note.
func IsNote(o *Object) bool {
	return o != nil && lo.Contains(noteTypes, o.Type)
}

func IsDocument(o *Object) bool {
	return o != nil && lo.Contains(documentTypes, o.Type)
}

func IsActivity(o *Object) bool {
	return o != nil && lo.Contains(activityTypes, o.Type)
}

func IsTombstone(o *Object) bool {
	return o != nil && o.Type == TypeTombstone
}

// IsActor reports whether the object is a federated identity profile.
func IsActor(o *Object) bool {
	return o != nil && (o.Type == TypePerson || o.Type == TypeService)
}

func IsQuestion(o *Object) bool {
	return o != nil && (o.Type == TypeNote || o.Type == TypeQuestion)
}

// IsEmoji requires a usable name and a single icon with a URL; anything less
// cannot be registered as a custom emoji.
func IsEmoji(o *Object) bool {
	if o == nil || o.Type != TypeEmoji || o.Name == "" {
		return false
	}
	if len(o.Icon) != 1 {
		return false
	}
	iconURL, err := o.Icon[0].URL.FirstID()
	return err == nil && iconURL != ""
}

func IsHashtag(o *Object) bool {
	return o != nil && o.Type == TypeHashtag && o.Name != ""
}

func IsPropertyValue(o *Object) bool {
	return o != nil && o.Type == TypePropertyValue && o.Name != ""
}

func IsCollection(o *Object) bool {
	return o != nil && (o.Type == TypeCollection || o.Type == TypeOrderedCollection ||
		o.Type == TypeCollectionPage || o.Type == TypeOrderedCollectionPage)
}
