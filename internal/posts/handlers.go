package posts

import (
	"errors"
	"log"

	"backend-postline/internal/auth"
	"backend-postline/internal/follow"
	"backend-postline/internal/media"
	"backend-postline/internal/pagecache"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

type Handlers struct {
	svc     *Service
	follows *follow.Service
	users   *auth.Service
	cache   *pagecache.Cache
	media   *media.Store
}

func NewHandlers(svc *Service, follows *follow.Service, users *auth.Service, cache *pagecache.Cache, store *media.Store) *Handlers {
	return &Handlers{svc: svc, follows: follows, users: users, cache: cache, media: store}
}

// RegisterRoutes wires the fixed paths. The username wildcard routes live in
// RegisterProfileRoutes and must be registered after every fixed route.
func (h *Handlers) RegisterRoutes(r fiber.Router, requireLogin fiber.Handler) {
	r.Get("/", h.index)
	r.Get("/group/:slug/", h.groupDetail)
	r.Get("/new/", requireLogin, h.newPostPage)
	r.Post("/new/", requireLogin, h.createPost)
	r.Get("/follow/", requireLogin, h.followFeed)
}

func (h *Handlers) RegisterProfileRoutes(r fiber.Router, requireLogin fiber.Handler) {
	r.Get("/:username/", h.profile)
	r.Get("/:username/:post_id/", h.postDetail)
	r.Get("/:username/:post_id/edit/", requireLogin, h.editPostPage)
	r.Post("/:username/:post_id/edit/", requireLogin, h.editPost)
	r.Post("/:username/:post_id/comment/", requireLogin, h.addComment)
}

func (h *Handlers) index(c *fiber.Ctx) error {
	key := pagecache.IndexKey(c.Query("page"))
	if body, ok := h.cache.Get(c.Context(), key); ok {
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.SendString(body)
	}

	page, err := h.svc.IndexPage(c.Context(), c.Query("page"))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	if err := c.Render("index", fiber.Map{
		"Page":   page,
		"Viewer": auth.Username(c),
	}); err != nil {
		return err
	}
	h.cache.Set(c.Context(), key, string(c.Response().Body()))
	return nil
}

func (h *Handlers) groupDetail(c *fiber.Ctx) error {
	group, page, err := h.svc.GroupPage(c.Context(), c.Params("slug"), c.Query("page"))
	if errors.Is(err, pgx.ErrNoRows) {
		return fiber.ErrNotFound
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.Render("group", fiber.Map{
		"Group":  group,
		"Page":   page,
		"Viewer": auth.Username(c),
	})
}

func (h *Handlers) newPostPage(c *fiber.Ctx) error {
	groups, err := h.svc.Groups(c.Context())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.Render("new", fiber.Map{
		"Form":   PostForm{},
		"Errors": map[string]string{},
		"Groups": groups,
		"Viewer": auth.Username(c),
	})
}

func (h *Handlers) createPost(c *fiber.Ctx) error {
	form := PostForm{
		Title:   c.FormValue("title"),
		Text:    c.FormValue("text"),
		GroupID: c.FormValue("group"),
	}
	errs := form.Validate()

	if form.GroupID != "" && errs["GroupID"] == "" {
		if _, err := h.svc.GroupByID(c.Context(), form.GroupID); errors.Is(err, pgx.ErrNoRows) {
			errs["GroupID"] = "select a valid group"
		} else if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
	}

	// The upload is only written to disk once the rest of the form is
	// valid, so a rejected form leaves no orphaned media file behind.
	var imagePath string
	if len(errs) == 0 {
		var err error
		imagePath, err = h.saveImage(c, errs)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
	}

	if len(errs) > 0 {
		groups, err := h.svc.Groups(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Render("new", fiber.Map{
			"Form":   form,
			"Errors": errs,
			"Groups": groups,
			"Viewer": auth.Username(c),
		})
	}

	_, err := h.svc.CreatePost(c.Context(), Post{
		Title:     form.Title,
		Text:      form.Text,
		GroupID:   form.GroupID,
		ImagePath: imagePath,
		AuthorID:  auth.UserID(c),
	})
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.Redirect("/")
}

func (h *Handlers) profile(c *fiber.Ctx) error {
	user, err := h.users.UserByUsername(c.Context(), c.Params("username"))
	if errors.Is(err, pgx.ErrNoRows) {
		return fiber.ErrNotFound
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	page, err := h.svc.ProfilePage(c.Context(), user.ID, c.Query("page"))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	relations, err := h.profileRelations(c, user.ID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.Render("profile", fiber.Map{
		"Profile":   user,
		"Page":      page,
		"PostCount": page.TotalCount,
		"Followers": relations.followers,
		"Follows":   relations.following,
		"Following": relations.viewerFollows,
		"Viewer":    auth.Username(c),
	})
}

func (h *Handlers) postDetail(c *fiber.Ctx) error {
	user, post, err := h.resolve(c)
	if err != nil {
		return err
	}

	comments, err := h.svc.Comments(c.Context(), post.ID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	postCount, err := h.svc.CountByAuthor(c.Context(), user.ID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	relations, err := h.profileRelations(c, user.ID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.Render("post", fiber.Map{
		"Profile":   user,
		"Post":      post,
		"Comments":  comments,
		"PostCount": postCount,
		"Followers": relations.followers,
		"Follows":   relations.following,
		"Following": relations.viewerFollows,
		"Form":      CommentForm{},
		"Viewer":    auth.Username(c),
	})
}

func (h *Handlers) editPostPage(c *fiber.Ctx) error {
	_, post, err := h.resolve(c)
	if err != nil {
		return err
	}
	if redirect := h.requireOwner(c, post); redirect != nil {
		return redirect(c)
	}

	groups, err := h.svc.Groups(c.Context())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.Render("post_edit", fiber.Map{
		"Form":   PostForm{Title: post.Title, Text: post.Text, GroupID: post.GroupID},
		"Errors": map[string]string{},
		"Post":   post,
		"Groups": groups,
		"Viewer": auth.Username(c),
	})
}

func (h *Handlers) editPost(c *fiber.Ctx) error {
	_, post, err := h.resolve(c)
	if err != nil {
		return err
	}
	if redirect := h.requireOwner(c, post); redirect != nil {
		return redirect(c)
	}

	form := PostForm{
		Title:   c.FormValue("title"),
		Text:    c.FormValue("text"),
		GroupID: c.FormValue("group"),
	}
	errs := form.Validate()

	if form.GroupID != "" && errs["GroupID"] == "" {
		if _, err := h.svc.GroupByID(c.Context(), form.GroupID); errors.Is(err, pgx.ErrNoRows) {
			errs["GroupID"] = "select a valid group"
		} else if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
	}

	imagePath := post.ImagePath
	if len(errs) == 0 {
		path, err := h.saveImage(c, errs)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if path != "" {
			imagePath = path
		}
	}

	if len(errs) > 0 {
		groups, err := h.svc.Groups(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Render("post_edit", fiber.Map{
			"Form":   form,
			"Errors": errs,
			"Post":   post,
			"Groups": groups,
			"Viewer": auth.Username(c),
		})
	}

	post.Title = form.Title
	post.Text = form.Text
	post.GroupID = form.GroupID
	post.ImagePath = imagePath
	post.AuthorID = auth.UserID(c)
	if err := h.svc.UpdatePost(c.Context(), post); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.Redirect("/" + auth.Username(c) + "/" + post.ID + "/")
}

// addComment persists a valid comment and redirects to the post page either
// way; invalid text is dropped without redisplaying the form.
func (h *Handlers) addComment(c *fiber.Ctx) error {
	_, post, err := h.resolve(c)
	if err != nil {
		return err
	}

	form := CommentForm{Text: c.FormValue("text")}
	if len(form.Validate()) == 0 {
		_, err := h.svc.CreateComment(c.Context(), Comment{
			PostID:   post.ID,
			AuthorID: auth.UserID(c),
			Text:     form.Text,
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
	}
	return c.Redirect("/" + auth.Username(c) + "/" + post.ID + "/")
}

func (h *Handlers) followFeed(c *fiber.Ctx) error {
	page, err := h.svc.FeedPage(c.Context(), auth.UserID(c), c.Query("page"))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.Render("follow", fiber.Map{
		"Page":   page,
		"Viewer": auth.Username(c),
	})
}

// resolve loads the route's user and post, mapping either miss to 404. The
// post is looked up by id alone; it need not belong to the username in the
// path.
func (h *Handlers) resolve(c *fiber.Ctx) (auth.User, Post, error) {
	user, err := h.users.UserByUsername(c.Context(), c.Params("username"))
	if errors.Is(err, pgx.ErrNoRows) {
		return auth.User{}, Post{}, fiber.ErrNotFound
	}
	if err != nil {
		return auth.User{}, Post{}, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	post, err := h.svc.PostByID(c.Context(), c.Params("post_id"))
	if errors.Is(err, pgx.ErrNoRows) {
		return auth.User{}, Post{}, fiber.ErrNotFound
	}
	if err != nil {
		return auth.User{}, Post{}, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return user, post, nil
}

// requireOwner returns a redirect handler when the acting user is not the
// post's author. The mismatch is a silent bounce to the index, not an error
// page.
func (h *Handlers) requireOwner(c *fiber.Ctx, post Post) fiber.Handler {
	if auth.UserID(c) == post.AuthorID {
		return nil
	}
	log.Printf("edit denied: user %s is not the author of post %s", auth.UserID(c), post.ID)
	return func(c *fiber.Ctx) error {
		return c.Redirect("/")
	}
}

type relations struct {
	followers     int
	following     int
	viewerFollows bool
}

func (h *Handlers) profileRelations(c *fiber.Ctx, profileID string) (relations, error) {
	followers, following, err := h.follows.Counts(c.Context(), profileID)
	if err != nil {
		return relations{}, err
	}

	rel := relations{followers: followers, following: following}
	if viewerID := auth.UserID(c); viewerID != "" {
		rel.viewerFollows, err = h.follows.IsFollowing(c.Context(), viewerID, profileID)
		if err != nil {
			return relations{}, err
		}
	}
	return rel, nil
}

func (h *Handlers) saveImage(c *fiber.Ctx, errs map[string]string) (string, error) {
	file, err := c.FormFile("image")
	if err != nil {
		return "", nil
	}

	path, err := h.media.SavePost(file)
	if errors.Is(err, media.ErrNotImage) {
		errs["Image"] = "upload a jpeg, png, gif or webp image"
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return path, nil
}
