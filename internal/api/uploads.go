package api

import (
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/artificielle/consolidations/internal/service/workspace"
)

// UploadSubsidiaries 上传子公司报表（multipart 字段 file，可多个）
// POST /api/workspaces/:id/subsidiaries
func (h *Handler) UploadSubsidiaries(c *gin.Context) {
	h.upload(c, workspace.KindSubsidiary)
}

// UploadBranches 上传分公司报表（multipart 字段 file，可多个）
// POST /api/workspaces/:id/branches
func (h *Handler) UploadBranches(c *gin.Context) {
	h.upload(c, workspace.KindBranch)
}

func (h *Handler) upload(c *gin.Context, kind workspace.SourceKind) {
	w, ok := h.workspaceFromParam(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil || len(form.File["file"]) == 0 {
		errorResponse(c, CodeBadRequest, "请上传文件")
		return
	}

	var uploads []workspace.Upload
	var rejected []workspace.UploadFailure
	for _, header := range form.File["file"] {
		if header.Size > h.maxUpload {
			rejected = append(rejected, workspace.UploadFailure{
				FileName: header.Filename,
				Code:     CodeFileTooLarge,
				Error:    fmt.Sprintf("文件过大，最大支持%dMB", h.maxUpload>>20),
			})
			continue
		}
		data, err := readUpload(header)
		if err != nil {
			rejected = append(rejected, workspace.UploadFailure{FileName: header.Filename, Code: CodeBadRequest, Error: "读取文件失败"})
			continue
		}
		uploads = append(uploads, workspace.Upload{FileName: header.Filename, Data: data})
	}

	var res workspace.UploadResult
	if kind == workspace.KindBranch {
		res = w.AddBranches(uploads)
	} else {
		res = w.AddSubsidiaries(uploads)
	}
	for i, err := range res.Errors() {
		code, msg := describeError(err)
		res.Failed[i].Code = code
		res.Failed[i].Error = msg
	}
	res.Failed = append(res.Failed, rejected...)

	h.log.WithFields(logrus.Fields{
		"workspace": w.ID(),
		"kind":      kind,
		"added":     len(res.Added),
		"failed":    len(res.Failed),
	}).Info("上传完成")
	success(c, res)
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}
