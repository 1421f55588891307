package application

import (
	"fmt"
	"strings"

	"github.com/dpfaulkner/redline/internal/domain/model"
)

// ReviewerIdentity is the automated reviewer's own account identity, used to
// recognize its past comments across runs.
type ReviewerIdentity struct {
	// Login is the account name writes are issued under.
	Login string
	// Aliases are additional account names treated as this reviewer, for
	// installations where writes arrive through a proxy account.
	Aliases []string
}

// IsOwn reports whether a comment was authored by this reviewer. The check
// is a ranked predicate chain; the first decisive signal wins:
//
//  1. The API's account-kind flag marks a bot: the name is compared with its
//     "[bot]" suffix stripped, so app-installation variants of the login
//     still match.
//  2. The plain account name matches the login or a configured alias
//     exactly (case-folded); suffix variants are not trusted without the
//     bot flag.
//  3. The body embeds the reviewer marker, the last resort for proxied or
//     indistinct accounts whose author metadata is unusable.
func (id ReviewerIdentity) IsOwn(author string, kind model.AuthorKind, body string) bool {
	if kind == model.AuthorKindBot && id.nameMatches(strings.TrimSuffix(author, "[bot]")) {
		return true
	}
	if id.nameMatches(author) {
		return true
	}
	return model.HasMarker(body)
}

func (id ReviewerIdentity) nameMatches(author string) bool {
	if strings.EqualFold(author, id.Login) {
		return true
	}
	for _, alias := range id.Aliases {
		if strings.EqualFold(author, alias) {
			return true
		}
	}
	return false
}

// checkDuplicate is the duplicate-bot guard. Given a resolved reply target,
// it inspects the thread's most recent activity: when the latest comment is
// this reviewer's own and the thread is not resolved, the reply is refused
// and the caller is directed to rewrite that comment in place instead.
// Without this, repeated review passes would append ever-growing unresolved
// reply chains to the reviewer's own prior comment.
func checkDuplicate(idx *Index, me ReviewerIdentity, rootID int64) *model.WriteResult {
	latest, ok := idx.LatestActivity(rootID)
	if !ok {
		return nil
	}
	if !me.IsOwn(latest.Author, latest.AuthorKind, latest.Body) {
		return nil
	}
	if t, ok := idx.Thread(rootID); ok && t.IsResolved {
		// A resolved thread may be reopened with fresh feedback.
		return nil
	}

	r := model.Refuse(model.RefusalDuplicate, fmt.Sprintf(
		"the latest comment on this thread (id=%d) is your own and the thread is unresolved; use update with comment_id=%d to revise it instead of replying again",
		latest.CommentID, latest.CommentID,
	))
	r.CommentID = latest.CommentID
	r.RootCommentID = rootID
	return &r
}
