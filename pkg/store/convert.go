package store

import (
	"bapp/models"
	"bapp/pkg/bapp"
)

func toParty(u *models.User) bapp.Party {
	return bapp.Party{ID: u.ID, Name: u.Name, Company: u.Company, Role: u.Role.Name}
}

// ToReport maps a BAPP row (with preloaded associations) onto the aggregate.
func ToReport(row *models.BAPP) *bapp.Report {
	r := &bapp.Report{
		ID:              row.ID,
		BAPPNumber:      row.BAPPNumber,
		ContractNumber:  row.ContractNumber,
		ProjectName:     row.ProjectName,
		ProjectLocation: row.ProjectLocation,
		StartDate:       row.StartDate,
		EndDate:         row.EndDate,
		CompletionDate:  row.CompletionDate,
		Notes:           row.Notes,
		Status:          bapp.Status(row.Status),
		Vendor:          toParty(&row.Vendor),
	}
	if r.Vendor.ID == 0 {
		r.Vendor.ID = row.VendorID
	}
	if row.DireksiPekerjaan != nil {
		p := toParty(row.DireksiPekerjaan)
		r.Approver = &p
	} else if row.DireksiPekerjaanID != nil {
		r.Approver = &bapp.Party{ID: *row.DireksiPekerjaanID}
	}
	for _, it := range row.WorkItems {
		r.WorkItems = append(r.WorkItems, bapp.WorkItem{
			Name:            it.WorkItemName,
			Description:     it.Description,
			PlannedProgress: it.PlannedProgress,
			ActualProgress:  it.ActualProgress,
			Unit:            it.Unit,
			Quality:         it.Quality,
		})
	}
	for i := range row.Attachments {
		r.Attachments = append(r.Attachments, ToAttachment(&row.Attachments[i]))
	}
	return r
}

// ToAttachment maps an attachment row. Uploader is set only when the row
// was loaded with it.
func ToAttachment(row *models.BAPPAttachment) bapp.Attachment {
	a := bapp.Attachment{
		ID:             row.ID,
		ReportID:       row.BAPPID,
		Classification: bapp.Classification(row.FileType),
		Path:           row.FilePath,
		FileName:       row.FileName,
		OriginalName:   row.OriginalName,
		ContentType:    row.ContentType,
		Size:           row.Size,
		UploaderID:     row.UploadedBy,
		CreatedAt:      row.CreatedAt,
	}
	if row.Uploader.ID != 0 {
		p := toParty(&row.Uploader)
		a.Uploader = &p
	}
	return a
}

func FromAttachment(a *bapp.Attachment) models.BAPPAttachment {
	return models.BAPPAttachment{
		ID:           a.ID,
		CreatedAt:    a.CreatedAt,
		BAPPID:       a.ReportID,
		FileType:     string(a.Classification),
		FilePath:     a.Path,
		FileName:     a.FileName,
		OriginalName: a.OriginalName,
		ContentType:  a.ContentType,
		Size:         a.Size,
		UploadedBy:   a.UploaderID,
	}
}
