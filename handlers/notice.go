package handlers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"flatmate/services/member"
	"flatmate/services/notice"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NoticeHandler exposes notice and document endpoints. Member listing
// applies the audience filter; the admin endpoints see everything.
type NoticeHandler struct {
	Service notice.NoticeService
	Members member.MemberService
}

// ListNoticesHandler handles GET /api/notices for members.
func (h *NoticeHandler) ListNoticesHandler(c *gin.Context) {
	memberID := c.GetString("memberID")

	acct, err := h.Members.GetByID(c.Request.Context(), memberID)
	if err != nil {
		getLogger(c).Error("Member fetch failed", zap.String("memberId", memberID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list notices"})
		return
	}

	notices, err := h.Service.ListNoticesForMember(c.Request.Context(), *acct, 0)
	if err != nil {
		getLogger(c).Error("Notice listing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list notices"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notices": notices})
}

// ListDocumentsHandler handles GET /api/documents.
func (h *NoticeHandler) ListDocumentsHandler(c *gin.Context) {
	docs, err := h.Service.ListDocuments(c.Request.Context())
	if err != nil {
		getLogger(c).Error("Document listing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list documents"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

// AdminListNoticesHandler handles GET /api/admin/notices.
func (h *NoticeHandler) AdminListNoticesHandler(c *gin.Context) {
	notices, err := h.Service.ListAllNotices(c.Request.Context())
	if err != nil {
		getLogger(c).Error("Notice listing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list notices"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notices": notices})
}

// CreateNoticeHandler handles POST /api/admin/notices. The payload is
// multipart form data with an optional attachment file.
func (h *NoticeHandler) CreateNoticeHandler(c *gin.Context) {
	logger := getLogger(c)

	data := notice.CreateNoticeData{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Category:    c.PostForm("category"),
		Audience:    c.PostForm("audience"),
		NoticeDate:  c.PostForm("noticeDate"),
		UploadedBy:  c.GetString("memberID"),
	}
	if data.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}
	if flats := c.PostForm("targetFlats"); flats != "" {
		for _, f := range strings.Split(flats, ",") {
			if f = strings.TrimSpace(f); f != "" {
				data.TargetFlats = append(data.TargetFlats, f)
			}
		}
	}
	if expiry := c.PostForm("expiryAt"); expiry != "" {
		ms, err := strconv.ParseInt(expiry, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "expiryAt must be epoch milliseconds"})
			return
		}
		data.ExpiryAt = ms
	}

	if file, err := c.FormFile("attachment"); err == nil {
		tmpPath := filepath.Join(os.TempDir(), uuid.NewString()+filepath.Ext(file.Filename))
		if err := c.SaveUploadedFile(file, tmpPath); err != nil {
			logger.Error("Attachment save failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read attachment"})
			return
		}
		defer os.Remove(tmpPath)
		data.AttachmentPath = tmpPath
	}

	n, err := h.Service.CreateNotice(c.Request.Context(), data)
	if err != nil {
		logger.Error("Notice creation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create notice"})
		return
	}
	c.JSON(http.StatusCreated, n)
}

// DeleteNoticeHandler handles DELETE /api/admin/notices/:id.
func (h *NoticeHandler) DeleteNoticeHandler(c *gin.Context) {
	id := c.Param("id")
	if err := h.Service.DeleteNotice(c.Request.Context(), id); err != nil {
		if errors.Is(err, notice.ErrNoticeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Notice not found"})
			return
		}
		getLogger(c).Error("Notice deletion failed", zap.String("noticeId", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete notice"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notice deleted"})
}

// CreateDocumentHandler handles POST /api/admin/documents.
func (h *NoticeHandler) CreateDocumentHandler(c *gin.Context) {
	logger := getLogger(c)

	title := c.PostForm("title")
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A file is required"})
		return
	}
	tmpPath := filepath.Join(os.TempDir(), uuid.NewString()+filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, tmpPath); err != nil {
		logger.Error("Document save failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
		return
	}
	defer os.Remove(tmpPath)

	d, err := h.Service.CreateDocument(c.Request.Context(), notice.CreateDocumentData{
		Title:      title,
		Date:       c.PostForm("date"),
		FilePath:   tmpPath,
		UploadedBy: c.GetString("memberID"),
	})
	if err != nil {
		logger.Error("Document creation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create document"})
		return
	}
	c.JSON(http.StatusCreated, d)
}

// DeleteDocumentHandler handles DELETE /api/admin/documents/:id.
func (h *NoticeHandler) DeleteDocumentHandler(c *gin.Context) {
	id := c.Param("id")
	if err := h.Service.DeleteDocument(c.Request.Context(), id); err != nil {
		if errors.Is(err, notice.ErrNoticeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
			return
		}
		getLogger(c).Error("Document deletion failed", zap.String("documentId", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete document"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Document deleted"})
}
