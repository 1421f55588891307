package model

// PullRequestRef identifies the pull request under review. HeadSHA is the
// commit new inline comments anchor to; it is captured at snapshot time and
// used for every create in the same run.
type PullRequestRef struct {
	Repo    string // "owner/name" form.
	Number  int
	Title   string
	HeadSHA string
	URL     string
}
