package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"hrportal_backend/internals/configs"
	"hrportal_backend/internals/constants"
	"hrportal_backend/internals/features/employees/biodata/model"
	notifService "hrportal_backend/internals/features/notifications/service"
	helper "hrportal_backend/internals/helpers"
	"hrportal_backend/internals/helpers/storage"
)

var (
	ErrNotFound          = errors.New("Biodata not found.")
	ErrPersonalEmailUsed = errors.New("This email has already been used for a submission.")
)

// ValidationError carries per-field messages back to the controller.
type ValidationError = helper.FieldsError

func fieldError(field, msg string) error {
	return helper.NewFieldError(field, msg)
}

// Document is one uploadable biodata file.
type Document struct {
	Field    string
	Dir      string
	Required bool
	Image    bool
	target   func(b *model.BioDataModel) **string
}

func (d Document) Target(b *model.BioDataModel) **string { return d.target(b) }

// Column is the URL column backing the document.
func (d Document) Column() string { return "biodata_" + d.Field + "_url" }

var Documents = []Document{
	{Field: "photo", Dir: "biodata/photos", Required: true, Image: true, target: func(b *model.BioDataModel) **string { return &b.PhotoURL }},
	{Field: "resume", Dir: "biodata/resumes", Required: true, target: func(b *model.BioDataModel) **string { return &b.ResumeURL }},
	{Field: "aadhar_card", Dir: "biodata/aadhar", target: func(b *model.BioDataModel) **string { return &b.AadharCardURL }},
	{Field: "pan_card", Dir: "biodata/pan", target: func(b *model.BioDataModel) **string { return &b.PanCardURL }},
	{Field: "ssc_marksheet", Dir: "biodata/education", target: func(b *model.BioDataModel) **string { return &b.SSCMarksheetURL }},
	{Field: "sslc_marksheet", Dir: "biodata/education", target: func(b *model.BioDataModel) **string { return &b.SSLCMarksheetURL }},
	{Field: "ug_documents", Dir: "biodata/education", target: func(b *model.BioDataModel) **string { return &b.UGDocumentsURL }},
	{Field: "pg_documents", Dir: "biodata/education", target: func(b *model.BioDataModel) **string { return &b.PGDocumentsURL }},
	{Field: "cert_document", Dir: "biodata/education", target: func(b *model.BioDataModel) **string { return &b.CertDocumentURL }},
}

const certDir = "biodata/certs"

// Uploads is the set of files picked from a multipart form.
type Uploads struct {
	Documents map[string]*multipart.FileHeader
	// Certs is keyed by work experience row position.
	Certs map[int]*multipart.FileHeader
}

// CollectUploads picks the known document fields and work_experience_cert[] out of form.
func CollectUploads(form *multipart.Form) Uploads {
	up := Uploads{Documents: map[string]*multipart.FileHeader{}, Certs: map[int]*multipart.FileHeader{}}
	if form == nil {
		return up
	}
	for _, d := range Documents {
		if fhs := form.File[d.Field]; len(fhs) > 0 && fhs[0] != nil && fhs[0].Size > 0 {
			up.Documents[d.Field] = fhs[0]
		}
	}
	certs := form.File["work_experience_cert[]"]
	if len(certs) == 0 {
		certs = form.File["work_experience_cert"]
	}
	for i, fh := range certs {
		if fh != nil && fh.Size > 0 {
			up.Certs[i] = fh
		}
	}
	return up
}

// Validate checks size and type of every file; requireMandatory adds the
// required-document checks used on intake.
func (u Uploads) Validate(requireMandatory bool) helper.FieldErrors {
	fe := helper.FieldErrors{}
	for _, d := range Documents {
		fh, ok := u.Documents[d.Field]
		if !ok {
			if requireMandatory && d.Required {
				fe.Add(d.Field, "This field is required.")
			}
			continue
		}
		if msg := storage.ValidateDocument(fh); msg != "" {
			fe.Add(d.Field, msg)
		}
	}
	for _, fh := range u.Certs {
		if msg := storage.ValidateDocument(fh); msg != "" {
			fe.Add("work_experience_cert", msg)
			break
		}
	}
	return fe
}

func uploadOne(ctx context.Context, blob storage.BlobService, dir string, fh *multipart.FileHeader, image bool) (string, error) {
	var (
		obj storage.Object
		err error
	)
	if image && constants.DetectFileTypeFromExt(fh.Filename) == constants.FileKindImage {
		obj, err = blob.UploadImage(ctx, dir, fh)
	} else {
		obj, err = blob.Upload(ctx, dir, fh)
	}
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", fh.Filename, err)
	}
	return obj.URL, nil
}

// Store uploads every file concurrently and writes the URLs onto b. When
// experience is non-nil, certificate URLs land on the matching rows (rowIdx
// maps experience position to form row position). It returns all stored URLs
// so a failed save can remove them again.
func (u Uploads) Store(ctx context.Context, blob storage.BlobService, b *model.BioDataModel, experience []model.WorkExperience, rowIdx []int) ([]string, error) {
	type result struct {
		doc    *Document
		expIdx int
		url    string
	}

	var jobs []*result
	for i := range Documents {
		if _, ok := u.Documents[Documents[i].Field]; ok {
			jobs = append(jobs, &result{doc: &Documents[i], expIdx: -1})
		}
	}
	for pos, row := range rowIdx {
		if _, ok := u.Certs[row]; ok {
			jobs = append(jobs, &result{expIdx: pos})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, job := range jobs {
		job := job
		g.Go(func() error {
			var err error
			if job.doc != nil {
				job.url, err = uploadOne(gctx, blob, job.doc.Dir, u.Documents[job.doc.Field], job.doc.Image)
			} else {
				job.url, err = uploadOne(gctx, blob, certDir, u.Certs[rowIdx[job.expIdx]], false)
			}
			return err
		})
	}
	waitErr := g.Wait()

	var urls []string
	for _, job := range jobs {
		if job.url != "" {
			urls = append(urls, job.url)
		}
	}
	if waitErr != nil {
		Discard(blob, urls)
		return nil, waitErr
	}

	for _, job := range jobs {
		if job.doc != nil {
			url := job.url
			*job.doc.Target(b) = &url
		} else {
			experience[job.expIdx].CertificatePath = job.url
		}
	}
	return urls, nil
}

// Discard removes uploaded objects; failures are only logged.
func Discard(blob storage.BlobService, urls []string) {
	storage.DeleteAll(blob, urls)
}

// Submit stores a public intake submission and notifies active admins.
func Submit(ctx context.Context, db *gorm.DB, blob storage.BlobService, b *model.BioDataModel, up Uploads, experience []model.WorkExperience, rowIdx []int) error {
	var n int64
	if err := db.Model(&model.BioDataModel{}).Where("biodata_personal_email = ?", b.PersonalEmail).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return fieldError("personal_email", ErrPersonalEmailUsed.Error())
	}

	urls, err := up.Store(ctx, blob, b, experience, rowIdx)
	if err != nil {
		return err
	}
	if experience == nil {
		experience = []model.WorkExperience{}
	}
	b.WorkExperience = datatypes.NewJSONType(experience)
	b.Status = model.StatusPending

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(b).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fieldError("personal_email", ErrPersonalEmailUsed.Error())
			}
			return err
		}
		_, err := notifService.NotifyAdmins(tx, constants.NotifBiodataNew, "New BioData Submission",
			fmt.Sprintf("%s %s submitted a new bio data request.", b.FirstName, b.LastName),
			configs.AppURL("/biodata/requests/"+b.BioDataID.String()), true)
		return err
	})
	if err != nil {
		Discard(blob, urls)
		return err
	}
	return nil
}
