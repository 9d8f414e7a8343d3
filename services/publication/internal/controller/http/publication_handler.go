package http

import (
	"errors"
	"net/http"

	"socialnet/pkg/logger"
	"socialnet/pkg/middleware"
	"socialnet/services/publication/internal/entity"
	"socialnet/services/publication/internal/usecase"

	"github.com/gin-gonic/gin"
)

const mediaFormField = "file"

type PublicationHandler struct {
	publicationUseCase usecase.PublicationUseCase
	logger             *logger.Logger
}

func NewPublicationHandler(publicationUseCase usecase.PublicationUseCase, logger *logger.Logger) *PublicationHandler {
	return &PublicationHandler{
		publicationUseCase: publicationUseCase,
		logger:             logger,
	}
}

type CreatePublicationRequest struct {
	Text string `json:"text" form:"text"`
}

// errorMessages holds the caller-facing text for the expected failures of one operation.
type errorMessages struct {
	op              string
	badRequest      string
	notFound        string
	noContent       string
	noFollows       string
	unauthenticated string
	internal        string
}

// fail maps a usecase error to its status. Unexpected errors are logged and
// replaced by the generic internal message.
func (h *PublicationHandler) fail(c *gin.Context, err error, msgs errorMessages) {
	switch {
	case errors.Is(err, entity.ErrBadRequest) && msgs.badRequest != "":
		respondError(c, http.StatusBadRequest, msgs.badRequest)
	case errors.Is(err, entity.ErrUnauthenticated):
		message := msgs.unauthenticated
		if message == "" {
			message = "User not authenticated"
		}
		respondError(c, http.StatusUnauthorized, message)
	case errors.Is(err, entity.ErrNoFollows) && msgs.noFollows != "":
		respondError(c, http.StatusNotFound, msgs.noFollows)
	case errors.Is(err, entity.ErrNoContent) && msgs.noContent != "":
		respondError(c, http.StatusNotFound, msgs.noContent)
	case errors.Is(err, entity.ErrNotFound) && msgs.notFound != "":
		respondError(c, http.StatusNotFound, msgs.notFound)
	default:
		h.logger.Error("%s failed: %v", msgs.op, err)
		respondError(c, http.StatusInternalServerError, msgs.internal)
	}
}

// TestPublication godoc
// @Summary      Controller probe
// @Tags         publications
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /publication/test [get]
func (h *PublicationHandler) TestPublication(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Message sent from the publication controller"})
}

// CreatePublication godoc
// @Summary      Create a publication
// @Description  Create a publication owned by the authenticated user
// @Tags         publications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreatePublicationRequest true "Publication text"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /publication [post]
func (h *PublicationHandler) CreatePublication(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	var req CreatePublicationRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, http.StatusBadRequest, "You must send the text of the publication")
		return
	}

	publication, err := h.publicationUseCase.CreatePublication(c.Request.Context(), userID, req.Text)
	if err != nil {
		h.fail(c, err, errorMessages{
			op:         "CreatePublication",
			badRequest: "You must send the text of the publication",
			internal:   "Error creating the publication",
		})
		return
	}

	respondSuccess(c, http.StatusCreated, "Publication created successfully", gin.H{
		"publicationStored": publication,
	})
}

// ShowPublication godoc
// @Summary      Get publication by ID
// @Tags         publications
// @Produce      json
// @Param        id path string true "Publication ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /publication/{id} [get]
func (h *PublicationHandler) ShowPublication(c *gin.Context) {
	publication, err := h.publicationUseCase.GetPublication(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, errorMessages{
			op:       "ShowPublication",
			notFound: "Publication does not exist",
			internal: "Error showing the publication",
		})
		return
	}

	respondSuccess(c, http.StatusOK, "Publication found", gin.H{
		"publication": publication,
	})
}

// DeletePublication godoc
// @Summary      Delete publication
// @Description  Delete a publication. Missing and foreign publications are reported the same way.
// @Tags         publications
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Publication ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /publication/{id} [delete]
func (h *PublicationHandler) DeletePublication(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	publication, err := h.publicationUseCase.DeletePublication(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.fail(c, err, errorMessages{
			op:       "DeletePublication",
			notFound: "Publication not found or you do not have permission to delete it",
			internal: "Error deleting the publication",
		})
		return
	}

	respondSuccess(c, http.StatusOK, "Publication deleted successfully", gin.H{
		"publication": publication,
	})
}

// UserPublications godoc
// @Summary      List a user's publications
// @Tags         publications
// @Produce      json
// @Param        id    path  string true  "User ID"
// @Param        page  path  int    false "Page number (default 1)"
// @Param        limit query int    false "Items per page (default 5, max 100)"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /publication/user/{id}/{page} [get]
func (h *PublicationHandler) UserPublications(c *gin.Context) {
	page := usecase.ParsePage(c.Param("page"))
	limit := usecase.ParseLimit(c.Query("limit"))

	result, err := h.publicationUseCase.ListUserPublications(c.Request.Context(), c.Param("id"), page, limit)
	if err != nil {
		h.fail(c, err, errorMessages{
			op:        "UserPublications",
			noContent: "There are no publications to show",
			internal:  "Error showing the publications",
		})
		return
	}

	respondSuccess(c, http.StatusOK, "User publications", pagePayload(result))
}

// Feed godoc
// @Summary      Feed of followed users
// @Description  Publications of every user the caller follows, newest first
// @Tags         publications
// @Produce      json
// @Security     BearerAuth
// @Param        page  path  int false "Page number (default 1)"
// @Param        limit query int false "Items per page (default 5, max 100)"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /publication/feed/{page} [get]
func (h *PublicationHandler) Feed(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)
	page := usecase.ParsePage(c.Param("page"))
	limit := usecase.ParseLimit(c.Query("limit"))

	result, err := h.publicationUseCase.GetFeed(c.Request.Context(), userID, page, limit)
	if err != nil {
		h.fail(c, err, errorMessages{
			op:              "Feed",
			unauthenticated: "User not authenticated",
			noFollows:       "You do not follow anyone, there are no publications to show",
			noContent:       "There are no publications to show",
			internal:        "Error showing the feed publications",
		})
		return
	}

	respondSuccess(c, http.StatusOK, "Publication feed", pagePayload(result))
}

// UploadMedia godoc
// @Summary      Attach media to a publication
// @Tags         publications
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string true "Publication ID"
// @Param        file formData file   true "Media file"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /publication/media/{id} [post]
func (h *PublicationHandler) UploadMedia(c *gin.Context) {
	// A missing file is only reported after the publication is known to exist.
	file, _ := c.FormFile(mediaFormField)

	publication, err := h.publicationUseCase.AttachMedia(c.Request.Context(), c.Param("id"), file)
	if err != nil {
		h.fail(c, err, errorMessages{
			op:         "UploadMedia",
			notFound:   "Publication does not exist",
			badRequest: "The request does not include the publication file",
			internal:   "Error uploading the publication file",
		})
		return
	}

	respondSuccess(c, http.StatusOK, "File uploaded successfully", gin.H{
		"publication": publication,
		"file":        publication.File,
	})
}

// ShowMedia godoc
// @Summary      Redirect to publication media
// @Tags         publications
// @Param        id path string true "Publication ID"
// @Success      302
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /publication/media/{id} [get]
func (h *PublicationHandler) ShowMedia(c *gin.Context) {
	locator, err := h.publicationUseCase.GetMediaLocator(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, errorMessages{
			op:       "ShowMedia",
			notFound: "There is no file for this publication",
			internal: "Error showing the publication file",
		})
		return
	}

	c.Redirect(http.StatusFound, locator)
}

func pagePayload(page *entity.Page) gin.H {
	return gin.H{
		"publications": page.Publications,
		"total":        page.Total,
		"pages":        page.Pages,
		"page":         page.Page,
		"limit":        page.Limit,
	}
}
