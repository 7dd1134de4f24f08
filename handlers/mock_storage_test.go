package handlers

import (
	"context"
	"io"
)

type mockStorage struct {
	UploadImageFn   func(filename, contentType, folder string) (string, error)
	RehostImageFn   func(imageURL, folder string) (string, error)
	DeleteFileFn    func(objectPath string) error
	DeleteFileCalls []string
	UploadCallCount int
	UploadFolders   []string
}

func newMockStorage() *mockStorage {
	return &mockStorage{
		DeleteFileCalls: []string{},
	}
}

func (m *mockStorage) UploadImage(ctx context.Context, file io.Reader, filename, contentType, folder string) (string, error) {
	m.UploadCallCount++
	m.UploadFolders = append(m.UploadFolders, folder)
	if m.UploadImageFn != nil {
		return m.UploadImageFn(filename, contentType, folder)
	}
	return "https://storage.googleapis.com/test-bucket/" + folder + "/test_image.jpg", nil
}

func (m *mockStorage) RehostImage(ctx context.Context, imageURL, folder string) (string, error) {
	m.UploadCallCount++
	if m.RehostImageFn != nil {
		return m.RehostImageFn(imageURL, folder)
	}
	return "https://storage.googleapis.com/test-bucket/" + folder + "/rehosted.jpg", nil
}

func (m *mockStorage) DeleteFile(ctx context.Context, objectPath string) error {
	m.DeleteFileCalls = append(m.DeleteFileCalls, objectPath)
	if m.DeleteFileFn != nil {
		return m.DeleteFileFn(objectPath)
	}
	return nil
}
