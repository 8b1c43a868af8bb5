package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ppmlab/atlas/dao/model"
	"github.com/ppmlab/atlas/internal/resputil"
	"github.com/ppmlab/atlas/internal/util"
	"github.com/ppmlab/atlas/pkg/objstore"
	"github.com/ppmlab/atlas/pkg/store"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewDocumentMgr)
}

// DocumentMgr keeps document metadata; the files live in object storage and
// are reached through signed links.
type DocumentMgr struct {
	name      string
	crud      *crud[model.Document, *model.Document]
	documents *store.Store[model.Document, *model.Document]
	signer    *objstore.Signer
}

func NewDocumentMgr(conf *RegisterConfig) Manager {
	mgr := &DocumentMgr{
		name: "documents",
		crud: newCrud[model.Document](conf, "created_at desc", map[string]string{
			"projectId": "project_id",
			"programId": "program_id",
		}),
		documents: store.New[model.Document](conf.DB),
		signer:    conf.Signer,
	}
	mgr.crud.parents = map[string]parentCheck{
		"project_id":     parentIn(store.New[model.Project](conf.DB)),
		"program_id":     parentIn(store.New[model.Program](conf.DB)),
		"uploaded_by_id": parentIn(store.New[model.User](conf.DB)),
	}
	mgr.crud.validate = func(c *gin.Context, _ uuid.UUID, d *model.Document) error {
		if d.FileKey == "" {
			return fmt.Errorf("fileKey is required: %w", errInvalidInput)
		}
		d.UploadedByID = util.GetToken(c).UserID
		return nil
	}
	return mgr
}

func (mgr *DocumentMgr) GetName() string { return mgr.name }

func (mgr *DocumentMgr) RegisterPublic(g *gin.RouterGroup) {
	g.GET("/verify", mgr.VerifyDownload)
}

func (mgr *DocumentMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("", mgr.crud.List)
	g.GET("/:id", mgr.crud.Get)
	g.GET("/:id/download-url", mgr.GetDownloadURL)
	g.POST("", mgr.crud.Create)
	g.DELETE("/:id", mgr.crud.Delete)
}

func (mgr *DocumentMgr) RegisterAdmin(g *gin.RouterGroup) {
	g.POST("/:id/restore", mgr.crud.Restore)
}

// GetDownloadURL godoc
//
//	@Summary		Document download link
//	@Description	Issue a time limited link to the stored file
//	@Tags			Document
//	@Produce		json
//	@Security		Bearer
//	@Param			id	path		string								true	"Document ID"
//	@Success		200	{object}	resputil.Response[objstore.SignedURL]	"Link"
//	@Failure		404	{object}	resputil.Response[any]				"Document not found"
//	@Router			/v1/documents/{id}/download-url [get]
func (mgr *DocumentMgr) GetDownloadURL(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	org := util.GetToken(c).OrganizationID
	doc, err := mgr.documents.FindByID(c, org, id, store.Select("id", "file_key"))
	if err != nil {
		resputil.FromError(c, err)
		return
	}
	signed, err := mgr.signer.Sign(org, doc.FileKey)
	if err != nil {
		resputil.FromError(c, err)
		return
	}
	resputil.Success(c, signed)
}

// VerifyDownload godoc
//
//	@Summary		Verify download token
//	@Description	Called by the storage gateway before serving a file
//	@Tags			Document
//	@Produce		json
//	@Param			token	query		string							true	"Token from the download link"
//	@Success		200		{object}	resputil.Response[objstore.Claims]	"Bucket, key and organization"
//	@Failure		401		{object}	resputil.Response[any]			"Invalid or expired token"
//	@Router			/v1/documents/verify [get]
func (mgr *DocumentMgr) VerifyDownload(c *gin.Context) {
	claims, err := mgr.signer.Verify(c.Query("token"))
	if err != nil {
		resputil.HTTPError(c, http.StatusUnauthorized, err.Error(), resputil.TokenInvalid)
		return
	}
	resputil.Success(c, claims)
}
