package bapp

// ResolveSignatures picks the vendor and approver signature images from the
// report's attachments. When one uploader has several signatures the most
// recent one wins; equal timestamps fall back to the larger id.
func ResolveSignatures(r *Report) Signatures {
	var sigs Signatures
	if r == nil {
		return sigs
	}
	vendor := latestSignature(r.Attachments, r.Vendor.ID)
	if vendor != nil {
		sigs.Vendor = vendor.Path
	}
	if r.Approver != nil {
		if approver := latestSignature(r.Attachments, r.Approver.ID); approver != nil {
			sigs.Approver = approver.Path
		}
	}
	return sigs
}

func latestSignature(atts []Attachment, uploader uint) *Attachment {
	var best *Attachment
	for i := range atts {
		a := &atts[i]
		if a.Classification != ClassSignature || a.UploaderID != uploader || a.Path == "" {
			continue
		}
		if best == nil || a.CreatedAt.After(best.CreatedAt) ||
			(a.CreatedAt.Equal(best.CreatedAt) && a.ID > best.ID) {
			best = a
		}
	}
	return best
}
