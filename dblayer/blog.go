package dblayer

import (
	"context"
	"fmt"
	"time"

	"konvele/dbtypes"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

// CreatePost stores a new blog post with an author snapshot and returns its
// id.
func (db *DB) CreatePost(ctx context.Context, title, content string, tags []string, author *dbtypes.User) (string, error) {
	now := time.Now()
	newPostRef := db.firestoreClient.Collection("blogPosts").NewDoc()
	post := &dbtypes.BlogPost{
		ID:             newPostRef.ID,
		Title:          title,
		Content:        content,
		AuthorID:       author.ID,
		AuthorName:     author.DisplayName,
		AuthorPhotoURL: author.PhotoURL,
		CreatedAt:      now,
		UpdatedAt:      now,
		Tags:           tags,
	}
	if _, err := newPostRef.Create(ctx, post); err != nil {
		return "", fmt.Errorf("while creating blog post: %w", err)
	}
	return newPostRef.ID, nil
}

// UpdatePost rewrites a post's editable fields and bumps UpdatedAt.  The
// author snapshot and CreatedAt are untouched.
func (db *DB) UpdatePost(ctx context.Context, postID, title, content string, tags []string) error {
	postRef := db.firestoreClient.Collection("blogPosts").Doc(postID)
	if _, err := postRef.Update(ctx, []firestore.Update{
		{Path: "title", Value: title},
		{Path: "content", Value: content},
		{Path: "tags", Value: tags},
		{Path: "updatedAt", Value: time.Now()},
	}); err != nil {
		return fmt.Errorf("while updating blog post: %w", err)
	}
	return nil
}

// DeletePost removes a post.
func (db *DB) DeletePost(ctx context.Context, postID string) error {
	if _, err := db.firestoreClient.Collection("blogPosts").Doc(postID).Delete(ctx); err != nil {
		return fmt.Errorf("while deleting blog post: %w", err)
	}
	return nil
}

// PostByID returns the post with the given id, or ErrPostNotFound.
func (db *DB) PostByID(ctx context.Context, postID string) (*dbtypes.BlogPost, error) {
	docSnap, err := db.firestoreClient.Collection("blogPosts").Doc(postID).Get(ctx)
	if err != nil {
		if docSnap != nil && !docSnap.Exists() {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("while retrieving blog post: %w", err)
	}

	post := &dbtypes.BlogPost{}
	if err := docSnap.DataTo(post); err != nil {
		return nil, fmt.Errorf("while unmarshaling blog post: %w", err)
	}
	post.ID = docSnap.Ref.ID
	return post, nil
}

// AllPosts lists every post, newest first.
func (db *DB) AllPosts(ctx context.Context) ([]*dbtypes.BlogPost, error) {
	return db.postsFromQuery(ctx, db.firestoreClient.Collection("blogPosts").OrderBy("createdAt", firestore.Desc))
}

// PostsByAuthor lists the author's posts, newest first.
func (db *DB) PostsByAuthor(ctx context.Context, authorID string) ([]*dbtypes.BlogPost, error) {
	return db.postsFromQuery(ctx, db.firestoreClient.Collection("blogPosts").
		Where("authorId", "==", authorID).
		OrderBy("createdAt", firestore.Desc))
}

func (db *DB) postsFromQuery(ctx context.Context, q firestore.Query) ([]*dbtypes.BlogPost, error) {
	posts := []*dbtypes.BlogPost{}
	postIter := q.Documents(ctx)
	defer postIter.Stop()
	for {
		postSnapshot, err := postIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("while iterating blog posts: %w", err)
		}

		post := &dbtypes.BlogPost{}
		if err := postSnapshot.DataTo(post); err != nil {
			return nil, fmt.Errorf("while unmarshaling blog post %s: %w", postSnapshot.Ref.ID, err)
		}
		post.ID = postSnapshot.Ref.ID
		posts = append(posts, post)
	}
	return posts, nil
}
