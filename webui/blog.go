package webui

import (
	"net/http"
	"strings"

	"konvele/dblayer"
	"konvele/dbtypes"
	"konvele/webui/uitemplates"

	"github.com/golang/glog"
)

func parsePostTags(raw string) []string {
	tags := []string{}
	for _, tag := range strings.Split(raw, ",") {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func (u *WebUI) listPostsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := u.getLoggedInUser(ctx, r)
	if err != nil {
		glog.Errorf("Error while getting logged-in user: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	posts, err := u.db.AllPosts(ctx)
	if err != nil {
		glog.Errorf("Error while listing posts: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	params := &uitemplates.ListPostsParams{
		LoggedIn: user != nil,
	}
	for _, post := range posts {
		params.Posts = append(params.Posts, uitemplates.PostItem{
			ID:         post.ID,
			Title:      post.Title,
			AuthorName: post.AuthorName,
			CreatedAt:  post.CreatedAt.Format("Jan 2, 2006"),
			Tags:       post.Tags,
			ShowLink:   "/show-post?id=" + post.ID,
		})
	}

	renderPage(w, uitemplates.ListPostsTemplate, params)
}

func (u *WebUI) showPostHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	postID := r.URL.Query().Get("id")
	post, err := u.db.PostByID(ctx, postID)
	if err == dblayer.ErrPostNotFound {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	if err != nil {
		glog.Errorf("Error while getting post %q: %v", postID, err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	user, err := u.getLoggedInUser(ctx, r)
	if err != nil {
		glog.Errorf("Error while getting logged-in user: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	params := &uitemplates.ShowPostParams{
		ID:         post.ID,
		Title:      post.Title,
		Content:    post.Content,
		AuthorName: post.AuthorName,
		CreatedAt:  post.CreatedAt.Format("January 2, 2006"),
		Tags:       post.Tags,
	}
	if !post.UpdatedAt.Equal(post.CreatedAt) {
		params.UpdatedAt = post.UpdatedAt.Format("January 2, 2006")
	}
	if user != nil && (user.ID == post.AuthorID || user.Role == dbtypes.RoleAdmin) {
		params.CanEdit = true
	}

	renderPage(w, uitemplates.ShowPostTemplate, params)
}

func (u *WebUI) newPostHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := u.requireUser(w, r)
	if !ok {
		return
	}

	params := &uitemplates.PostFormParams{
		FormTitle:  "New Post",
		PostTarget: "/new-post",
	}

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			glog.Errorf("Error while parsing form: %v", err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}

		title := strings.TrimSpace(r.PostForm.Get("title"))
		content := strings.TrimSpace(r.PostForm.Get("content"))
		if title == "" || content == "" {
			params.UserError = "Title and content must not be empty"
			params.Title = title
			params.Content = content
			params.Tags = r.PostForm.Get("tags")
			renderPage(w, uitemplates.PostFormTemplate, params)
			return
		}

		id, err := u.db.CreatePost(ctx, title, content, parsePostTags(r.PostForm.Get("tags")), user)
		if err != nil {
			glog.Errorf("Error while creating post: %v", err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}

		http.Redirect(w, r, "/show-post?id="+id, http.StatusFound)
		return
	}

	renderPage(w, uitemplates.PostFormTemplate, params)
}

func (u *WebUI) editPostHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := u.requireUser(w, r)
	if !ok {
		return
	}

	postID := r.URL.Query().Get("id")
	post, err := u.db.PostByID(ctx, postID)
	if err == dblayer.ErrPostNotFound {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	if err != nil {
		glog.Errorf("Error while getting post %q: %v", postID, err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}
	if post.AuthorID != user.ID && user.Role != dbtypes.RoleAdmin {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	params := &uitemplates.PostFormParams{
		FormTitle:  "Edit Post",
		PostTarget: "/edit-post?id=" + post.ID,
		Title:      post.Title,
		Content:    post.Content,
		Tags:       strings.Join(post.Tags, ", "),
	}

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			glog.Errorf("Error while parsing form: %v", err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}

		title := strings.TrimSpace(r.PostForm.Get("title"))
		content := strings.TrimSpace(r.PostForm.Get("content"))
		if title == "" || content == "" {
			params.UserError = "Title and content must not be empty"
			renderPage(w, uitemplates.PostFormTemplate, params)
			return
		}

		if err := u.db.UpdatePost(ctx, post.ID, title, content, parsePostTags(r.PostForm.Get("tags"))); err != nil {
			glog.Errorf("Error while updating post %q: %v", post.ID, err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}

		http.Redirect(w, r, "/show-post?id="+post.ID, http.StatusFound)
		return
	}

	renderPage(w, uitemplates.PostFormTemplate, params)
}

func (u *WebUI) deletePostHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	user, ok := u.requireUser(w, r)
	if !ok {
		return
	}

	postID := r.URL.Query().Get("id")
	post, err := u.db.PostByID(ctx, postID)
	if err == dblayer.ErrPostNotFound {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	if err != nil {
		glog.Errorf("Error while getting post %q: %v", postID, err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}
	if post.AuthorID != user.ID && user.Role != dbtypes.RoleAdmin {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if err := u.db.DeletePost(ctx, postID); err != nil {
		glog.Errorf("Error while deleting post %q: %v", postID, err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/blog", http.StatusFound)
}
