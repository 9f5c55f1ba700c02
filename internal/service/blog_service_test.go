package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/fitlab-service/internal/domain"
	apperrors "github.com/spec-kit/fitlab-service/pkg/util/errorutil"
)

type blogFixture struct {
	svc     *BlogService
	users   *fakeUserRepo
	blogs   *fakeBlogRepo
	trainer *domain.User
	rival   *domain.User
}

func newBlogFixture() blogFixture {
	clock := newTestClock()
	users := newFakeUserRepo(clock)
	blogs := newFakeBlogRepo(clock, users)
	return blogFixture{
		svc:     NewBlogService(BlogDependencies{BlogRepo: blogs}),
		users:   users,
		blogs:   blogs,
		trainer: seedUser(users, domain.RoleTrainer, "Tara", "tara@example.com", approved),
		rival:   seedUser(users, domain.RoleTrainer, "Rex", "rex@example.com", approved),
	}
}

func (f blogFixture) write(t *testing.T, author *domain.User, title string, mutate ...func(*BlogInput)) *domain.Blog {
	t.Helper()
	input := BlogInput{Title: title, Content: title + " body"}
	for _, m := range mutate {
		m(&input)
	}
	blog, err := f.svc.CreatePost(context.Background(), author, input)
	require.NoError(t, err)
	return blog
}

func TestCreatePostDefaultsAndValidation(t *testing.T) {
	f := newBlogFixture()
	ctx := context.Background()

	blog := f.write(t, f.trainer, "  Squat depth  ", func(in *BlogInput) {
		in.Tags = []string{" Legs ", "legs", "", "Mobility"}
	})
	assert.Equal(t, "Squat depth", blog.Title)
	assert.Equal(t, domain.DefaultBlogCategory, blog.Category)
	assert.Equal(t, []string{"Legs", "Mobility"}, blog.Tags)
	assert.True(t, blog.IsPublished)
	assert.Equal(t, f.trainer.ID, blog.AuthorID)

	member := seedUser(f.users, domain.RoleFitnessEnthusiast, "Milo", "milo@example.com")
	_, err := f.svc.CreatePost(ctx, member, BlogInput{Title: "Hi", Content: "there"})
	assert.True(t, apperrors.HasCode(err, "FORBIDDEN"))

	_, err = f.svc.CreatePost(ctx, f.trainer, BlogInput{Title: " ", Content: "x"})
	assert.True(t, apperrors.HasCode(err, "VALIDATION_FAILED"))

	_, err = f.svc.CreatePost(ctx, f.trainer, BlogInput{Title: strings.Repeat("é", domain.MaxBlogTitleLength+1), Content: "x"})
	assert.True(t, apperrors.HasCode(err, "VALIDATION_FAILED"))

	assert.Len(t, f.blogs.blogs, 1)
}

func TestUpdateAndDeleteAreOwnerScoped(t *testing.T) {
	f := newBlogFixture()
	ctx := context.Background()
	blog := f.write(t, f.trainer, "Deadlifts")

	title := "Hijacked"
	_, err := f.svc.UpdatePost(ctx, f.rival.ID, blog.ID, BlogPatch{Title: &title})
	assert.True(t, apperrors.HasCode(err, "NOT_FOUND"))
	assert.True(t, apperrors.HasCode(f.svc.DeletePost(ctx, f.rival.ID, blog.ID), "NOT_FOUND"))

	draft := false
	category := "Strength"
	updated, err := f.svc.UpdatePost(ctx, f.trainer.ID, blog.ID, BlogPatch{Category: &category, IsPublished: &draft})
	require.NoError(t, err)
	assert.Equal(t, "Deadlifts", updated.Title)
	assert.Equal(t, "Strength", updated.Category)
	assert.False(t, updated.IsPublished)

	empty := "  "
	_, err = f.svc.UpdatePost(ctx, f.trainer.ID, blog.ID, BlogPatch{Content: &empty})
	assert.True(t, apperrors.HasCode(err, "VALIDATION_FAILED"))

	_, err = f.svc.UpdatePost(ctx, f.trainer.ID, "not-a-uuid", BlogPatch{})
	assert.True(t, apperrors.HasCode(err, "NOT_FOUND"))

	require.NoError(t, f.svc.DeletePost(ctx, f.trainer.ID, blog.ID))
	assert.True(t, apperrors.HasCode(f.svc.DeletePost(ctx, f.trainer.ID, blog.ID), "NOT_FOUND"))
}

func TestPublicReadsHideDraftsAndSuspendedAuthors(t *testing.T) {
	f := newBlogFixture()
	ctx := context.Background()
	unpublished := false
	first := f.write(t, f.trainer, "Protein timing", func(in *BlogInput) { in.Category = "Nutrition" })
	draft := f.write(t, f.trainer, "Draft", func(in *BlogInput) { in.IsPublished = &unpublished })
	second := f.write(t, f.trainer, "Sleep and recovery")
	hidden := f.write(t, f.rival, "Rival post")

	suspended, _ := f.users.GetByID(ctx, f.rival.ID)
	suspended.IsSuspended = true
	require.NoError(t, f.users.Update(ctx, suspended))

	public, err := f.svc.ListPublished(ctx, BlogQuery{})
	require.NoError(t, err)
	require.Len(t, public, 2)
	assert.Equal(t, second.ID, public[0].ID)
	assert.Equal(t, first.ID, public[1].ID)
	assert.Equal(t, "Tara", public[0].Author.Name)

	nutrition, err := f.svc.ListPublished(ctx, BlogQuery{Category: "nutrition"})
	require.NoError(t, err)
	require.Len(t, nutrition, 1)
	assert.Equal(t, first.ID, nutrition[0].ID)

	found, err := f.svc.ListPublished(ctx, BlogQuery{Search: "RECOVERY"})
	require.NoError(t, err)
	require.Len(t, found, 1)

	got, err := f.svc.GetPublished(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Protein timing", got.Title)

	for _, id := range []string{draft.ID, hidden.ID, uuid.NewString(), "garbage"} {
		_, err := f.svc.GetPublished(ctx, id)
		assert.True(t, apperrors.HasCode(err, "NOT_FOUND"), id)
	}

	mine, err := f.svc.ListByAuthor(ctx, f.trainer.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 3)
	assert.Equal(t, second.ID, mine[0].ID)

	none, err := f.svc.ListByAuthor(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
