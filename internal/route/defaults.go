package route

// DefaultDescriptors is the PasteMate page table. Paste pages and the
// account page require a signed in user; the sign-in and register pages are
// marked public explicitly so they stay reachable with deny_by_default.
func DefaultDescriptors() []Descriptor {
	return []Descriptor{
		{Name: "home", Path: "/", Meta: Meta{Title: "PasteMate"}},
		{Name: "about", Path: "/about", Meta: Meta{Title: "About"}},
		{Name: "signin", Path: "/account/signin", Meta: Meta{Title: "Sign in", RequiresAuth: Bool(false)}},
		{Name: "register", Path: "/account/register", Meta: Meta{Title: "Register", RequiresAuth: Bool(false)}},
		{Name: "account", Path: "/account", Meta: Meta{Title: "Account", RequiresAuth: Bool(true)}},
		{Name: "paste-submit", Path: "/paste/submit", Meta: Meta{Title: "New paste", RequiresAuth: Bool(true)}},
		{Name: "paste-list", Path: "/paste/list", Meta: Meta{Title: "My pastes", RequiresAuth: Bool(true)}},
		{Name: "paste-view", Path: "/paste/view/{uuid}", Meta: Meta{Title: "Paste", RequiresAuth: Bool(true)}},
		{Name: "paste-edit", Path: "/paste/edit/{uuid}", Meta: Meta{Title: "Edit paste", RequiresAuth: Bool(true)}},
	}
}
