package application

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/devtrail/bootcamper/internal/domain/authz"
	"github.com/devtrail/bootcamper/internal/domain/entity"
	"github.com/devtrail/bootcamper/internal/domain/repository"
	"github.com/devtrail/bootcamper/pkg/apperr"
	"github.com/devtrail/bootcamper/pkg/geocoder"
	"github.com/devtrail/bootcamper/pkg/helpers"
	"github.com/devtrail/bootcamper/pkg/query"
)

const maxPhotoSize = 2 << 20 // 2 MiB

var photoContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// BootcampInput carries client-settable bootcamp fields. Derived fields
// (slug, location, averages, photo) are computed server-side.
type BootcampInput struct {
	Name          string   `json:"name" binding:"required,max=50"`
	Description   string   `json:"description" binding:"required,max=500"`
	Website       string   `json:"website" binding:"omitempty,url"`
	Phone         string   `json:"phone" binding:"omitempty,max=20"`
	Email         string   `json:"email" binding:"omitempty,email"`
	Address       string   `json:"address" binding:"required"`
	Careers       []string `json:"careers" binding:"required,min=1"`
	Housing       bool     `json:"housing"`
	JobAssistance bool     `json:"job_assistance"`
	JobGuarantee  bool     `json:"job_guarantee"`
	AcceptGI      bool     `json:"accept_gi"`
}

// BootcampService orchestrates bootcamp CRUD, geo lookups, photo upload and
// full-text search.
type BootcampService struct {
	Bootcamps  repository.BootcampRepository
	Maintainer *AggregateMaintainer
	Geo        geocoder.Geocoder
	ES         *elasticsearch.Client
	ESIndex    string
	GCS        *storage.Client
	GCSBucket  string
	Logger     *logrus.Logger
}

func NewBootcampService(bootcamps repository.BootcampRepository, maintainer *AggregateMaintainer, geo geocoder.Geocoder, es *elasticsearch.Client, esIndex string, gcs *storage.Client, gcsBucket string, logger *logrus.Logger) *BootcampService {
	return &BootcampService{
		Bootcamps:  bootcamps,
		Maintainer: maintainer,
		Geo:        geo,
		ES:         es,
		ESIndex:    esIndex,
		GCS:        gcs,
		GCSBucket:  gcsBucket,
		Logger:     logger,
	}
}

var bootcampQueryOpts = query.Options{
	DefaultSort:     "-created_at",
	DefaultPageSize: 25,
	MaxPageSize:     100,
}

// List compiles the raw query string into a descriptor and returns a page of
// bootcamps. Reads are public.
func (s *BootcampService) List(ctx context.Context, params url.Values) (*ListResult[*entity.Bootcamp], error) {
	d := query.Compile(params, bootcampQueryOpts)
	items, total, err := s.Bootcamps.List(ctx, d)
	if err != nil {
		return nil, err
	}
	return newListResult(items, total, d.Page), nil
}

func (s *BootcampService) Get(ctx context.Context, id string) (*entity.Bootcamp, error) {
	return s.Bootcamps.GetByID(ctx, id)
}

// Create inserts a bootcamp for the caller. Publishers own at most one
// bootcamp; admins are exempt from the cap.
func (s *BootcampService) Create(ctx context.Context, id *authz.Identity, in BootcampInput) (*entity.Bootcamp, error) {
	if err := decisionErr(authz.Authorize(id, authz.Action{
		Verb:          authz.Create,
		RequiredRoles: []authz.Role{authz.RolePublisher},
	})); err != nil {
		return nil, err
	}
	if id.Role != authz.RoleAdmin {
		if _, err := s.Bootcamps.GetByOwner(ctx, id.ID); err == nil {
			return nil, apperr.Duplicate("publisher already owns a bootcamp")
		} else if !apperr.Is(err, apperr.KindNotFound) {
			return nil, err
		}
	}

	loc, err := s.Geo.Geocode(ctx, in.Address)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	b := &entity.Bootcamp{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Slug:        entity.Slugify(in.Name),
		Description: in.Description,
		Website:     in.Website,
		Phone:       in.Phone,
		Email:       in.Email,
		Address:     in.Address,
		Location: &entity.Location{
			Type:             "Point",
			Coordinates:      []float64{loc.Lng, loc.Lat},
			FormattedAddress: loc.FormattedAddress,
			City:             loc.City,
			Country:          loc.Country,
		},
		Careers:       in.Careers,
		Housing:       in.Housing,
		JobAssistance: in.JobAssistance,
		JobGuarantee:  in.JobGuarantee,
		AcceptGI:      in.AcceptGI,
		UserID:        id.ID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Bootcamps.Create(ctx, b); err != nil {
		return nil, err
	}
	s.index(ctx, b)
	return b, nil
}

// Update applies client-settable fields. Owner or admin only.
func (s *BootcampService) Update(ctx context.Context, id *authz.Identity, bootcampID string, in BootcampInput) (*entity.Bootcamp, error) {
	b, err := s.Bootcamps.GetByID(ctx, bootcampID)
	if err != nil {
		return nil, err
	}
	if err := decisionErr(authz.Authorize(id, authz.Action{
		Verb:            authz.Update,
		ResourceOwnerID: b.UserID,
	})); err != nil {
		return nil, err
	}

	if in.Address != "" && in.Address != b.Address {
		loc, err := s.Geo.Geocode(ctx, in.Address)
		if err != nil {
			return nil, err
		}
		b.Address = in.Address
		b.Location = &entity.Location{
			Type:             "Point",
			Coordinates:      []float64{loc.Lng, loc.Lat},
			FormattedAddress: loc.FormattedAddress,
			City:             loc.City,
			Country:          loc.Country,
		}
	}
	b.Name = in.Name
	b.Slug = entity.Slugify(in.Name)
	b.Description = in.Description
	b.Website = in.Website
	b.Phone = in.Phone
	b.Email = in.Email
	b.Careers = in.Careers
	b.Housing = in.Housing
	b.JobAssistance = in.JobAssistance
	b.JobGuarantee = in.JobGuarantee
	b.AcceptGI = in.AcceptGI
	b.UpdatedAt = time.Now().UTC()

	if err := s.Bootcamps.Update(ctx, b); err != nil {
		return nil, err
	}
	s.index(ctx, b)
	return b, nil
}

// Delete cascades: courses and reviews go first, the bootcamp last.
func (s *BootcampService) Delete(ctx context.Context, id *authz.Identity, bootcampID string) error {
	b, err := s.Bootcamps.GetByID(ctx, bootcampID)
	if err != nil {
		return err
	}
	if err := decisionErr(authz.Authorize(id, authz.Action{
		Verb:            authz.Delete,
		ResourceOwnerID: b.UserID,
	})); err != nil {
		return err
	}
	if err := s.Maintainer.DeleteBootcampCascade(ctx, bootcampID); err != nil {
		return err
	}
	s.deindex(ctx, bootcampID)
	return nil
}

// WithinRadius geocodes the zipcode and returns bootcamps inside the given
// distance (km).
func (s *BootcampService) WithinRadius(ctx context.Context, zipcode string, distanceKm float64) ([]*entity.Bootcamp, error) {
	if distanceKm <= 0 {
		return nil, apperr.Validation("distance must be a positive number of kilometres")
	}
	loc, err := s.Geo.Geocode(ctx, zipcode)
	if err != nil {
		return nil, err
	}
	return s.Bootcamps.ListWithinRadius(ctx, loc.Lng, loc.Lat, distanceKm)
}

// UploadPhoto stores the image in GCS and records its public URL on the
// bootcamp. Owner or admin only.
func (s *BootcampService) UploadPhoto(ctx context.Context, id *authz.Identity, bootcampID string, fh *multipart.FileHeader) (string, error) {
	b, err := s.Bootcamps.GetByID(ctx, bootcampID)
	if err != nil {
		return "", err
	}
	if err := decisionErr(authz.Authorize(id, authz.Action{
		Verb:            authz.Update,
		ResourceOwnerID: b.UserID,
	})); err != nil {
		return "", err
	}
	if fh.Size > maxPhotoSize {
		return "", apperr.Validation("photo must be 2MB or smaller")
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	contentType, ok := photoContentTypes[ext]
	if !ok {
		return "", apperr.Validation("photo must be a jpg, png or webp image")
	}

	f, err := fh.Open()
	if err != nil {
		return "", apperr.Upstream("open uploaded file", err)
	}
	defer f.Close()

	objectPath := fmt.Sprintf("bootcamps/%s/photo%s", b.ID, ext)
	photoURL, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, contentType, f)
	if err != nil {
		return "", apperr.Upstream("upload photo", err)
	}
	if err := s.Bootcamps.SetPhoto(ctx, b.ID, photoURL); err != nil {
		return "", err
	}
	return photoURL, nil
}

// bootcampDoc is the Elasticsearch projection of a bootcamp.
type bootcampDoc struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Careers     []string `json:"careers"`
	City        string   `json:"city,omitempty"`
	Country     string   `json:"country,omitempty"`
}

func docFromBootcamp(b *entity.Bootcamp) bootcampDoc {
	doc := bootcampDoc{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		Careers:     b.Careers,
	}
	if b.Location != nil {
		doc.City = b.Location.City
		doc.Country = b.Location.Country
	}
	return doc
}

// index writes the bootcamp into Elasticsearch. Indexing is best-effort:
// search lags rather than failing the write path.
func (s *BootcampService) index(ctx context.Context, b *entity.Bootcamp) {
	if s.ES == nil {
		return
	}
	body, err := json.Marshal(docFromBootcamp(b))
	if err != nil {
		return
	}
	req := esapi.IndexRequest{
		Index:      s.ESIndex,
		DocumentID: b.ID,
		Body:       bytes.NewReader(body),
		Refresh:    "false",
	}
	res, err := req.Do(ctx, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("bootcamp_id", b.ID).Warn("es index failed")
		}
		return
	}
	defer res.Body.Close()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"bootcamp_id": b.ID, "status": res.StatusCode}).Warn("es index failed")
	}
}

func (s *BootcampService) deindex(ctx context.Context, bootcampID string) {
	if s.ES == nil {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESIndex, DocumentID: bootcampID}
	res, err := req.Do(ctx, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("bootcamp_id", bootcampID).Warn("es delete failed")
		}
		return
	}
	defer res.Body.Close()
}

// Search runs a multi_match query over name, description and careers and
// hydrates the hits from the primary store.
func (s *BootcampService) Search(ctx context.Context, q string, limit int) ([]*entity.Bootcamp, error) {
	if s.ES == nil {
		return nil, apperr.Upstream("search unavailable", nil)
	}
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, apperr.Validation("search query must not be empty")
	}
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	esQuery := map[string]any{
		"size": limit,
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"name^3", "careers^2", "description", "city", "country"},
			},
		},
	}
	body, err := json.Marshal(esQuery)
	if err != nil {
		return nil, apperr.Upstream("build search query", err)
	}
	res, err := s.ES.Search(
		s.ES.Search.WithContext(ctx),
		s.ES.Search.WithIndex(s.ESIndex),
		s.ES.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, apperr.Upstream("search", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		return nil, apperr.Upstream("search", fmt.Errorf("elasticsearch status %d: %s", res.StatusCode, raw))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, apperr.Upstream("decode search response", err)
	}

	out := make([]*entity.Bootcamp, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		b, err := s.Bootcamps.GetByID(ctx, hit.ID)
		if err != nil {
			// index may lag a delete
			if apperr.Is(err, apperr.KindNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}
