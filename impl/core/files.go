package core

import (
	"fmt"
	"io"
	"mime/multipart"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"ShopDesk/entity"
)

// UploadAttachments stores every part of a multipart upload in GridFS and
// returns the attachment records to hang off the message. Sizes are checked
// before anything is written; a failed upload leaves nothing behind.
func (c *Core) UploadAttachments(convID primitive.ObjectID, uploader string, files []*multipart.FileHeader) ([]entity.Attachment, error) {
	if c.files == nil {
		return nil, fmt.Errorf("%w: file storage not configured", entity.ErrUpload)
	}

	for _, fh := range files {
		if fh.Size > entity.MaxFileSize {
			return nil, entity.FileTooLargeError(fh.Filename, fh.Size)
		}
	}

	var attachments []entity.Attachment
	for _, fh := range files {
		file, err := fh.Open()
		if err != nil {
			c.discardAttachments(attachments)
			return nil, fmt.Errorf("%w: open %q: %v", entity.ErrUpload, fh.Filename, err)
		}

		mimeType := fh.Header.Get("Content-Type")
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}

		meta := entity.FileMetadata{
			MIMEType:       mimeType,
			ConversationID: convID.Hex(),
			Uploader:       uploader,
		}

		fileID, size, err := c.files.UploadFile(fh.Filename, file, meta)
		file.Close()
		if err != nil {
			c.discardAttachments(attachments)
			return nil, fmt.Errorf("%w: store %q: %v", entity.ErrUpload, fh.Filename, err)
		}

		attachments = append(attachments, entity.Attachment{
			FileID:   fileID,
			Filename: fh.Filename,
			MIMEType: mimeType,
			Size:     size,
		})
	}

	return attachments, nil
}

// DownloadFile streams an attachment out of GridFS.
func (c *Core) DownloadFile(fileID primitive.ObjectID) (string, string, io.ReadCloser, error) {
	if c.files == nil {
		return "", "", nil, fmt.Errorf("file storage not configured")
	}
	filename, meta, reader, err := c.files.DownloadFile(fileID)
	if err != nil {
		return "", "", nil, err
	}
	return filename, meta.MIMEType, reader, nil
}
