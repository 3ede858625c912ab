package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"taskforge/internal/database"
	"taskforge/internal/models"
	"taskforge/internal/repository"
	"taskforge/internal/storage"
)

// AttachmentServiceTestSuite defines the test suite for AttachmentService
type AttachmentServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	blobs   *storage.Memory
	service *AttachmentService
	ctx     context.Context
}

// SetupTest runs before each test
func (suite *AttachmentServiceTestSuite) SetupTest() {
	var err error

	// Create in-memory SQLite database
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	// Run migrations
	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.Attachment{},
		&models.TaskAttachment{},
	)
	suite.Require().NoError(err)

	database.SetDB(suite.db)

	suite.blobs = storage.NewMemory()
	suite.ctx = context.Background()
	suite.service = NewAttachmentService(
		repository.NewAttachmentRepository(suite.db),
		repository.NewTaskRepository(suite.db),
		repository.NewUserRepository(suite.db),
		suite.blobs,
	)
}

// TearDownTest runs after each test
func (suite *AttachmentServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// Helper function to create test data
func (suite *AttachmentServiceTestSuite) createTestUser(username string) *models.User {
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hashedpassword",
		IsActive:     true,
	}
	suite.Require().NoError(suite.db.Create(user).Error)
	return user
}

func (suite *AttachmentServiceTestSuite) createTestTask(title, userID string) *models.Task {
	task := &models.Task{
		Title:  title,
		UserID: userID,
	}
	suite.Require().NoError(suite.db.Create(task).Error)
	return task
}

func (suite *AttachmentServiceTestSuite) upload(userID, name string, data []byte) string {
	info, err := suite.service.UploadUnlinked(suite.ctx, UploadInput{
		Data:         data,
		OriginalName: name,
		ContentType:  "text/plain",
		UserID:       userID,
	})
	suite.Require().NoError(err)
	return info.ID
}

func (suite *AttachmentServiceTestSuite) countLinks(taskID string) int64 {
	var count int64
	suite.db.Model(&models.TaskAttachment{}).Where("task_id = ?", taskID).Count(&count)
	return count
}

// TestUploadUnlinked_Success tests storing a file without any task
func (suite *AttachmentServiceTestSuite) TestUploadUnlinked_Success() {
	user := suite.createTestUser("alice")
	data := []byte("shopping list")

	info, err := suite.service.UploadUnlinked(suite.ctx, UploadInput{
		Data:         data,
		OriginalName: "list.txt",
		ContentType:  "text/plain",
		UserID:       user.ID,
	})

	assert.NoError(suite.T(), err)
	assert.NotEmpty(suite.T(), info.ID)
	assert.Equal(suite.T(), "list.txt", info.FileName)
	assert.Equal(suite.T(), "text/plain", info.ContentType)
	assert.Equal(suite.T(), int64(len(data)), info.SizeBytes)

	sum := sha256.Sum256(data)
	assert.Equal(suite.T(), hex.EncodeToString(sum[:]), info.ChecksumSHA256)
	assert.Equal(suite.T(), 1, suite.blobs.Len())
}

// TestUploadUnlinked_NoFileName tests the fallback attachment name
func (suite *AttachmentServiceTestSuite) TestUploadUnlinked_NoFileName() {
	user := suite.createTestUser("alice")

	info, err := suite.service.UploadUnlinked(suite.ctx, UploadInput{
		Data:   []byte("x"),
		UserID: user.ID,
	})

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "file", info.FileName)
	assert.Equal(suite.T(), "application/octet-stream", info.ContentType)
}

// TestUploadUnlinked_UnknownUser tests uploading for a missing user
func (suite *AttachmentServiceTestSuite) TestUploadUnlinked_UnknownUser() {
	_, err := suite.service.UploadUnlinked(suite.ctx, UploadInput{
		Data:   []byte("x"),
		UserID: "missing-user",
	})

	assert.ErrorIs(suite.T(), err, ErrUserNotFound)
	assert.Equal(suite.T(), 0, suite.blobs.Len())
}

// TestUploadUnlinked_BlobFailure tests that a blob-store failure leaves no
// metadata behind
func (suite *AttachmentServiceTestSuite) TestUploadUnlinked_BlobFailure() {
	user := suite.createTestUser("alice")
	suite.blobs.FailStore = errors.New("disk full")

	_, err := suite.service.UploadUnlinked(suite.ctx, UploadInput{
		Data:         []byte("x"),
		OriginalName: "list.txt",
		UserID:       user.ID,
	})

	assert.Error(suite.T(), err)
	var count int64
	suite.db.Model(&models.Attachment{}).Count(&count)
	assert.Equal(suite.T(), int64(0), count)
}

// TestUploadAndAttach_Success tests the combined store-and-link path
func (suite *AttachmentServiceTestSuite) TestUploadAndAttach_Success() {
	user := suite.createTestUser("alice")
	task := suite.createTestTask("Groceries", user.ID)

	info, err := suite.service.UploadAndAttach(suite.ctx, task.ID, UploadInput{
		Data:         []byte("shopping list"),
		OriginalName: "list.txt",
		ContentType:  "text/plain",
		UserID:       user.ID,
	})

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(1), suite.countLinks(task.ID))

	infos, err := suite.service.ListByTask(task.ID, user.ID)
	assert.NoError(suite.T(), err)
	suite.Require().Len(infos, 1)
	assert.Equal(suite.T(), info.ID, infos[0].ID)
}

// TestUploadAndAttach_TaskNotFound tests that nothing is stored when the task
// fails the guarded lookup
func (suite *AttachmentServiceTestSuite) TestUploadAndAttach_TaskNotFound() {
	alice := suite.createTestUser("alice")
	bob := suite.createTestUser("bob")
	task := suite.createTestTask("Bob's Task", bob.ID)

	_, err := suite.service.UploadAndAttach(suite.ctx, task.ID, UploadInput{
		Data:         []byte("x"),
		OriginalName: "list.txt",
		UserID:       alice.ID,
	})

	assert.ErrorIs(suite.T(), err, ErrTaskNotFound)
	assert.Equal(suite.T(), 0, suite.blobs.Len())
}

// TestAttach_Idempotent tests that attaching twice leaves a single link row
func (suite *AttachmentServiceTestSuite) TestAttach_Idempotent() {
	user := suite.createTestUser("alice")
	task := suite.createTestTask("Groceries", user.ID)
	attachmentID := suite.upload(user.ID, "list.txt", []byte("x"))

	_, err := suite.service.Attach(attachmentID, task.ID, user.ID)
	assert.NoError(suite.T(), err)

	_, err = suite.service.Attach(attachmentID, task.ID, user.ID)
	assert.NoError(suite.T(), err)

	assert.Equal(suite.T(), int64(1), suite.countLinks(task.ID))
}

// TestAttach_ForeignAttachment tests that an ownership mismatch on the
// attachment is forbidden, not hidden as not-found
func (suite *AttachmentServiceTestSuite) TestAttach_ForeignAttachment() {
	alice := suite.createTestUser("alice")
	bob := suite.createTestUser("bob")
	task := suite.createTestTask("Groceries", alice.ID)
	attachmentID := suite.upload(bob.ID, "secret.txt", []byte("x"))

	_, err := suite.service.Attach(attachmentID, task.ID, alice.ID)

	assert.ErrorIs(suite.T(), err, ErrAttachmentForbidden)
}

// TestAttach_ForeignTask tests that someone else's task stays invisible
func (suite *AttachmentServiceTestSuite) TestAttach_ForeignTask() {
	alice := suite.createTestUser("alice")
	bob := suite.createTestUser("bob")
	task := suite.createTestTask("Bob's Task", bob.ID)
	attachmentID := suite.upload(alice.ID, "list.txt", []byte("x"))

	_, err := suite.service.Attach(attachmentID, task.ID, alice.ID)

	assert.ErrorIs(suite.T(), err, ErrTaskNotFound)
}

// TestAttach_AttachmentNotFound tests attaching a missing attachment
func (suite *AttachmentServiceTestSuite) TestAttach_AttachmentNotFound() {
	user := suite.createTestUser("alice")
	task := suite.createTestTask("Groceries", user.ID)

	_, err := suite.service.Attach("missing-attachment", task.ID, user.ID)

	assert.ErrorIs(suite.T(), err, ErrAttachmentNotFound)
}

// TestDetach_RemovesAllLinks tests the fan-out unlink across every task
func (suite *AttachmentServiceTestSuite) TestDetach_RemovesAllLinks() {
	user := suite.createTestUser("alice")
	task1 := suite.createTestTask("Groceries", user.ID)
	task2 := suite.createTestTask("Cooking", user.ID)
	attachmentID := suite.upload(user.ID, "list.txt", []byte("x"))

	_, err := suite.service.Attach(attachmentID, task1.ID, user.ID)
	suite.Require().NoError(err)
	_, err = suite.service.Attach(attachmentID, task2.ID, user.ID)
	suite.Require().NoError(err)

	_, err = suite.service.Detach(attachmentID, user.ID)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(0), suite.countLinks(task1.ID))
	assert.Equal(suite.T(), int64(0), suite.countLinks(task2.ID))

	// Detach never touches the metadata or the blob.
	_, err = suite.service.GetInfo(attachmentID, user.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, suite.blobs.Len())
}

// TestDelete_RemovesEverything tests that delete clears links, blob and
// metadata
func (suite *AttachmentServiceTestSuite) TestDelete_RemovesEverything() {
	user := suite.createTestUser("alice")
	task := suite.createTestTask("Groceries", user.ID)
	attachmentID := suite.upload(user.ID, "list.txt", []byte("x"))
	_, err := suite.service.Attach(attachmentID, task.ID, user.ID)
	suite.Require().NoError(err)

	err = suite.service.Delete(suite.ctx, attachmentID, user.ID)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(0), suite.countLinks(task.ID))
	assert.Equal(suite.T(), 0, suite.blobs.Len())

	_, err = suite.service.GetInfo(attachmentID, user.ID)
	assert.ErrorIs(suite.T(), err, ErrAttachmentNotFound)
}

// TestDelete_BlobFailureStillDeletesMetadata tests that a storage outage does
// not block metadata deletion
func (suite *AttachmentServiceTestSuite) TestDelete_BlobFailureStillDeletesMetadata() {
	user := suite.createTestUser("alice")
	attachmentID := suite.upload(user.ID, "list.txt", []byte("x"))
	suite.blobs.FailDelete = errors.New("storage unavailable")

	err := suite.service.Delete(suite.ctx, attachmentID, user.ID)

	assert.NoError(suite.T(), err)
	_, err = suite.service.GetInfo(attachmentID, user.ID)
	assert.ErrorIs(suite.T(), err, ErrAttachmentNotFound)
}

// failingAttachmentRepository wraps a real repository and fails selected
// writes so rollback behaviour can be exercised
type failingAttachmentRepository struct {
	repository.AttachmentRepository
	FailCreateLink error
	FailDelete     error
}

func (r *failingAttachmentRepository) Transaction(fn func(repository.AttachmentRepository) error) error {
	return r.AttachmentRepository.Transaction(func(tx repository.AttachmentRepository) error {
		return fn(&failingAttachmentRepository{
			AttachmentRepository: tx,
			FailCreateLink:       r.FailCreateLink,
			FailDelete:           r.FailDelete,
		})
	})
}

func (r *failingAttachmentRepository) CreateLink(link *models.TaskAttachment) error {
	if r.FailCreateLink != nil {
		return r.FailCreateLink
	}
	return r.AttachmentRepository.CreateLink(link)
}

func (r *failingAttachmentRepository) Delete(id string) error {
	if r.FailDelete != nil {
		return r.FailDelete
	}
	return r.AttachmentRepository.Delete(id)
}

// TestUploadAndAttach_LinkFailureRollsBackMetadata tests that a failed link
// write leaves no attachment row behind
func (suite *AttachmentServiceTestSuite) TestUploadAndAttach_LinkFailureRollsBackMetadata() {
	user := suite.createTestUser("alice")
	task := suite.createTestTask("Groceries", user.ID)

	failing := &failingAttachmentRepository{
		AttachmentRepository: repository.NewAttachmentRepository(suite.db),
		FailCreateLink:       errors.New("link write failed"),
	}
	service := NewAttachmentService(
		failing,
		repository.NewTaskRepository(suite.db),
		repository.NewUserRepository(suite.db),
		suite.blobs,
	)

	_, err := service.UploadAndAttach(suite.ctx, task.ID, UploadInput{
		Data:         []byte("x"),
		OriginalName: "list.txt",
		ContentType:  "text/plain",
		UserID:       user.ID,
	})

	assert.Error(suite.T(), err)
	var attachments int64
	suite.Require().NoError(suite.db.Model(&models.Attachment{}).Count(&attachments).Error)
	assert.Equal(suite.T(), int64(0), attachments)
	assert.Equal(suite.T(), int64(0), suite.countLinks(task.ID))
	// the unreferenced blob is a tolerated leak
	assert.Equal(suite.T(), 1, suite.blobs.Len())
}

// TestDelete_MetadataFailureKeepsLinks tests that a failed metadata delete
// rolls the link removal back, leaving the attachment fully intact
func (suite *AttachmentServiceTestSuite) TestDelete_MetadataFailureKeepsLinks() {
	user := suite.createTestUser("alice")
	task := suite.createTestTask("Groceries", user.ID)
	attachmentID := suite.upload(user.ID, "list.txt", []byte("x"))
	_, err := suite.service.Attach(attachmentID, task.ID, user.ID)
	suite.Require().NoError(err)

	failing := &failingAttachmentRepository{
		AttachmentRepository: repository.NewAttachmentRepository(suite.db),
		FailDelete:           errors.New("metadata delete failed"),
	}
	service := NewAttachmentService(
		failing,
		repository.NewTaskRepository(suite.db),
		repository.NewUserRepository(suite.db),
		suite.blobs,
	)

	err = service.Delete(suite.ctx, attachmentID, user.ID)

	assert.Error(suite.T(), err)
	assert.Equal(suite.T(), int64(1), suite.countLinks(task.ID))
	assert.Equal(suite.T(), 1, suite.blobs.Len())
	_, err = suite.service.GetInfo(attachmentID, user.ID)
	assert.NoError(suite.T(), err)
}

// TestDelete_Foreign tests deleting someone else's attachment
func (suite *AttachmentServiceTestSuite) TestDelete_Foreign() {
	alice := suite.createTestUser("alice")
	bob := suite.createTestUser("bob")
	attachmentID := suite.upload(bob.ID, "secret.txt", []byte("x"))

	err := suite.service.Delete(suite.ctx, attachmentID, alice.ID)

	assert.ErrorIs(suite.T(), err, ErrAttachmentForbidden)
	assert.Equal(suite.T(), 1, suite.blobs.Len())
}

// TestLoadBytes_Roundtrip tests downloading the stored content back
func (suite *AttachmentServiceTestSuite) TestLoadBytes_Roundtrip() {
	user := suite.createTestUser("alice")
	data := []byte("shopping list")
	attachmentID := suite.upload(user.ID, "list.txt", data)

	got, info, err := suite.service.LoadBytes(suite.ctx, attachmentID, user.ID)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), data, got)
	assert.Equal(suite.T(), "list.txt", info.FileName)
}

// TestListByTask_FiltersForeign tests that links to foreign attachments are
// filtered out at read time
func (suite *AttachmentServiceTestSuite) TestListByTask_FiltersForeign() {
	alice := suite.createTestUser("alice")
	bob := suite.createTestUser("bob")
	task := suite.createTestTask("Groceries", alice.ID)

	mine := suite.upload(alice.ID, "mine.txt", []byte("a"))
	theirs := suite.upload(bob.ID, "theirs.txt", []byte("b"))

	_, err := suite.service.Attach(mine, task.ID, alice.ID)
	suite.Require().NoError(err)
	// Force a link row that the write path would never create.
	suite.Require().NoError(suite.db.Create(&models.TaskAttachment{
		TaskID:       task.ID,
		AttachmentID: theirs,
	}).Error)

	infos, err := suite.service.ListByTask(task.ID, alice.ID)

	assert.NoError(suite.T(), err)
	suite.Require().Len(infos, 1)
	assert.Equal(suite.T(), mine, infos[0].ID)
}

// TestGetInfo_NotFound tests metadata lookup for a missing attachment
func (suite *AttachmentServiceTestSuite) TestGetInfo_NotFound() {
	user := suite.createTestUser("alice")

	_, err := suite.service.GetInfo("missing-attachment", user.ID)

	assert.ErrorIs(suite.T(), err, ErrAttachmentNotFound)
}

// TestSuite runs the test suite
func TestAttachmentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AttachmentServiceTestSuite))
}
