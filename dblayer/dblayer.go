// Package dblayer packages up most actual firestore accesses.
package dblayer

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"konvele/dbtypes"

	"cloud.google.com/go/firestore"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/api/iterator"
)

type DB struct {
	firestoreClient *firestore.Client
}

func New(firestoreClient *firestore.Client) *DB {
	return &DB{
		firestoreClient: firestoreClient,
	}
}

var (
	ErrEmailMustNotBeEmpty        = errors.New("email must not be empty")
	ErrPasswordMustNotBeEmpty     = errors.New("password must not be empty")
	ErrUnknownUserOrWrongPassword = errors.New("unknown user or wrong password")
	ErrUserNotFound               = errors.New("no user by that id")
	ErrEventNotFound              = errors.New("no event by that id")
	ErrPostNotFound               = errors.New("no blog post by that id")
	ErrRegistrationNotFound       = errors.New("no registration by that id")
	ErrTicketWrongEvent           = errors.New("ticket belongs to a different event")
	ErrTicketAlreadyUsed          = errors.New("ticket has already been used")
	ErrBadCategory                = errors.New("unknown event category")
	ErrPermissionDenied           = errors.New("permission denied")
)

// SessionFromPassword runs the password-based login process for a given user,
// returning a session or an error.
func (db *DB) SessionFromPassword(ctx context.Context, email, password string) (*dbtypes.Session, error) {
	if email == "" {
		return nil, ErrEmailMustNotBeEmpty
	}

	if password == "" {
		return nil, ErrPasswordMustNotBeEmpty
	}

	var userSnapshot *firestore.DocumentSnapshot
	userIter := db.firestoreClient.Collection("users").Where("email", "==", email).Documents(ctx)
	defer userIter.Stop()
	for {
		var err error
		userSnapshot, err = userIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("while looking up user with email %q: %w", email, err)
		}

		// We only consider a single user.
		break
	}

	if userSnapshot == nil {
		return nil, ErrUnknownUserOrWrongPassword
	}

	user := &dbtypes.User{}
	if err := userSnapshot.DataTo(user); err != nil {
		return nil, fmt.Errorf("while unmarshaling user %q: %w", email, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrUnknownUserOrWrongPassword
	}

	sessionCookieBytes := make([]byte, 32)
	if _, err := rand.Read(sessionCookieBytes); err != nil {
		return nil, fmt.Errorf("while generating session cookie: %w", err)
	}

	sessionCookie := base64.StdEncoding.EncodeToString(sessionCookieBytes)

	expires := time.Now().Add(18 * time.Hour)

	sessions := db.firestoreClient.Collection("sessions")
	session := &dbtypes.Session{
		Cookie:  sessionCookie,
		User:    userSnapshot.Ref,
		Expires: expires,
	}
	if _, _, err := sessions.Add(ctx, session); err != nil {
		return nil, fmt.Errorf("while storing session cookie: %w", err)
	}

	return session, nil
}

// DeleteSession deletes a session by its cookie.
func (db *DB) DeleteSession(ctx context.Context, cookie string) error {
	sessionIter := db.firestoreClient.Collection("sessions").Where("cookie", "==", cookie).Documents(ctx)
	defer sessionIter.Stop()
	for {
		sessionSnapshot, err := sessionIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("while looking up session: %w", err)
		}

		_, err = sessionSnapshot.Ref.Delete(ctx, firestore.LastUpdateTime(sessionSnapshot.UpdateTime))
		if err != nil {
			return fmt.Errorf("while deleting session: %w", err)
		}
	}

	return nil
}

// UserFromSessionCookie looks up a session from its cookie, and then returns
// the corresponding user.  A nil user with a nil error means the user is not
// logged in.
func (db *DB) UserFromSessionCookie(ctx context.Context, cookie string) (*dbtypes.User, error) {
	var sessionSnapshot *firestore.DocumentSnapshot
	sessionIter := db.firestoreClient.Collection("sessions").Where("cookie", "==", cookie).Documents(ctx)
	defer sessionIter.Stop()
	for {
		var err error
		sessionSnapshot, err = sessionIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("while looking up session: %w", err)
		}

		// We only consider a single session.
		break
	}
	if sessionSnapshot == nil {
		// Session object must have been cleaned up due to expiration; user is
		// not logged in.
		return nil, nil
	}

	session := &dbtypes.Session{}
	if err := sessionSnapshot.DataTo(session); err != nil {
		return nil, fmt.Errorf("while unmarshaling session: %w", err)
	}

	if session.Expires.Before(time.Now()) {
		// Session object is expired; user is not logged in.
		return nil, nil
	}

	userSnapshot, err := session.User.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("while getting user linked from session: %w", err)
	}

	user := &dbtypes.User{}
	if err := userSnapshot.DataTo(user); err != nil {
		return nil, fmt.Errorf("while unmarshaling user: %w", err)
	}
	user.ID = userSnapshot.Ref.ID

	return user, nil
}

// UserByID returns the user document with the given id, or ErrUserNotFound.
func (db *DB) UserByID(ctx context.Context, id string) (*dbtypes.User, error) {
	docSnap, err := db.firestoreClient.Collection("users").Doc(id).Get(ctx)
	if err != nil {
		if docSnap != nil && !docSnap.Exists() {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("while retrieving user: %w", err)
	}

	user := &dbtypes.User{}
	if err := docSnap.DataTo(user); err != nil {
		return nil, fmt.Errorf("while unmarshaling user: %w", err)
	}
	user.ID = docSnap.Ref.ID

	return user, nil
}

// AllUsers lists every user document, optionally filtered to a single role.
func (db *DB) AllUsers(ctx context.Context, role string) ([]*dbtypes.User, error) {
	query := db.firestoreClient.Collection("users").Query
	if role != "" {
		query = query.Where("role", "==", role)
	}

	users := []*dbtypes.User{}
	userIter := query.Documents(ctx)
	defer userIter.Stop()
	for {
		userSnapshot, err := userIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("while iterating users: %w", err)
		}

		user := &dbtypes.User{}
		if err := userSnapshot.DataTo(user); err != nil {
			return nil, fmt.Errorf("while unmarshaling user %s: %w", userSnapshot.Ref.ID, err)
		}
		user.ID = userSnapshot.Ref.ID
		users = append(users, user)
	}

	return users, nil
}

// UpdateUserProfile overwrites the student-editable profile fields.
func (db *DB) UpdateUserProfile(ctx context.Context, id string, displayName, photoURL, stream, collegeName, year string, skills []string) error {
	_, err := db.firestoreClient.Collection("users").Doc(id).Update(ctx, []firestore.Update{
		{Path: "displayName", Value: displayName},
		{Path: "photoURL", Value: photoURL},
		{Path: "stream", Value: stream},
		{Path: "collegeName", Value: collegeName},
		{Path: "year", Value: year},
		{Path: "skills", Value: skills},
	})
	if err != nil {
		return fmt.Errorf("while updating user profile: %w", err)
	}
	return nil
}
