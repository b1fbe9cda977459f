package control

import (
	"encoding/base64"
	"net/http"
	"os"
	"strings"

	perrors "github.com/ncassessoria/gerapost/pkg/errors"
	"github.com/ncassessoria/gerapost/pkg/post"
)

// MaxUploadBytes caps uploaded images.
const MaxUploadBytes = 10 << 20

// FileDataURI reads an image file into a data URI, so the post carries the
// image itself and exports never depend on a remote host.
func FileDataURI(path string) (string, error) {
	if err := perrors.ValidatePath(path); err != nil {
		return "", err
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", perrors.Wrap(perrors.ErrCodeInvalidPath, err, "cannot read %s", path)
	}
	if info.Size() > MaxUploadBytes {
		return "", perrors.New(perrors.ErrCodeInvalidInput, "%s is larger than %d MB", path, MaxUploadBytes>>20)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", perrors.Wrap(perrors.ErrCodeInvalidPath, err, "cannot read %s", path)
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return "", perrors.New(perrors.ErrCodeInvalidInput, "%s is not an image (%s)", path, mime)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// UploadLogo sets the logo from a local image file.
func (e *Editor) UploadLogo(path string) (post.Post, error) {
	uri, err := FileDataURI(path)
	if err != nil {
		return e.Post(), err
	}
	return e.UpdateData(post.Patch{Logo: &post.LogoPatch{URL: &uri}}), nil
}

// UploadBackground sets the background image from a local image file.
func (e *Editor) UploadBackground(path string) (post.Post, error) {
	uri, err := FileDataURI(path)
	if err != nil {
		return e.Post(), err
	}
	return e.UpdateData(post.Patch{ImageURL: &uri}), nil
}

// RemoveLogo clears the logo.
func (e *Editor) RemoveLogo() post.Post {
	return e.UpdateData(post.Patch{Logo: &post.LogoPatch{URL: post.Ptr("")}})
}
