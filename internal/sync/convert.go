package sync

import "github.com/noteflow/syncserver/internal/domain"

// toPayload renders any of the three concrete entity kinds as a generic
// domain.Payload for conflict diffing and wire transmission; fromPayload is
// not needed because repository.Update/Create already consume
// domain.Payload directly (spec §9 "Dynamic payloads").

func notePayload(n *domain.Note) domain.Payload {
	p := domain.Payload{
		domain.FieldTitle:   n.Title,
		domain.FieldContent: n.Content,
		domain.FieldPinned:  n.Pinned,
		"contentHash":       n.ContentHash,
	}
	if n.FolderID != nil {
		p[domain.FieldFolderID] = *n.FolderID
	} else {
		p[domain.FieldFolderID] = nil
	}
	return p
}

func folderPayload(f *domain.Folder) domain.Payload {
	p := domain.Payload{domain.FieldName: f.Name}
	if f.ParentID != nil {
		p[domain.FieldParentID] = *f.ParentID
	} else {
		p[domain.FieldParentID] = nil
	}
	return p
}

func reviewPayload(r *domain.Review) domain.Payload {
	return domain.Payload{
		domain.FieldContent: r.Content,
		"mood":              r.Mood,
		"achievements":      r.Achievements,
		"improvements":      r.Improvements,
		"plans":             r.Plans,
	}
}
