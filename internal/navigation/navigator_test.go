package navigation

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ghaggin/pastemate/internal/guard"
	"github.com/ghaggin/pastemate/internal/model"
	"github.com/ghaggin/pastemate/internal/route"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

type stubSession struct {
	user *model.User
}

func (s stubSession) CurrentUser(_ context.Context) (*model.User, error) {
	return s.user, nil
}

func newNavigator(t *testing.T) *Navigator {
	table, err := route.NewTable(route.DefaultDescriptors())
	require.Nil(t, err)
	return New(table, zaptest.NewLogger(t))
}

func Test_NavigateWithGuard(t *testing.T) {
	tests := []struct {
		name      string
		user      *model.User
		to        string
		wantPath  string
		wantChain []string
	}{
		{"protected without user", nil, "/paste/list", "/account/signin", []string{"/paste/list", "/account/signin"}},
		{"protected with user", &model.User{ID: 42}, "/paste/list", "/paste/list", []string{"/paste/list"}},
		{"param route without user", nil, "/paste/view/abc", "/account/signin", []string{"/paste/view/abc", "/account/signin"}},
		{"unmarked without user", nil, "/", "/", []string{"/"}},
		{"public without user", nil, "/account/signin", "/account/signin", []string{"/account/signin"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			assert := assert.New(t)

			n := newNavigator(t)
			n.BeforeEach(guard.New(stubSession{user: tt.user}).BeforeEach)

			res, err := n.Navigate(context.Background(), "/", tt.to)
			require.Nil(err)
			assert.Equal(tt.wantPath, res.Path)
			assert.Equal(tt.wantChain, res.Chain)
			assert.Equal(len(tt.wantChain) > 1, res.Redirected())
		})
	}
}

func Test_NavigateNotFound(t *testing.T) {
	n := newNavigator(t)

	_, err := n.Navigate(context.Background(), "/", "/missing")
	assert.True(t, errors.Is(err, ErrRouteNotFound))
}

func Test_HooksRunInOrderOncePerIntent(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	n := newNavigator(t)

	var order []string
	n.BeforeEach(func(_ context.Context, to, from route.Descriptor, next guard.Continuation) {
		order = append(order, "first:"+to.Name+":"+from.Name)
		next(guard.Proceed())
	})
	n.BeforeEach(func(_ context.Context, to, _ route.Descriptor, next guard.Continuation) {
		order = append(order, "second:"+to.Name)
		next(guard.Proceed())
	})

	_, err := n.Navigate(context.Background(), "/about", "/")
	require.Nil(err)
	assert.Equal([]string{"first:home:about", "second:home"}, order)
}

func Test_RedirectStopsLaterHooks(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	n := newNavigator(t)
	n.BeforeEach(func(_ context.Context, to, _ route.Descriptor, next guard.Continuation) {
		if to.Name == "about" {
			next(guard.RedirectTo("/"))
			return
		}
		next(guard.Proceed())
	})

	var seen []string
	n.BeforeEach(func(_ context.Context, to, _ route.Descriptor, next guard.Continuation) {
		seen = append(seen, to.Path)
		next(guard.Proceed())
	})

	res, err := n.Navigate(context.Background(), "", "/about")
	require.Nil(err)
	assert.Equal("/", res.Path)
	assert.Equal([]string{"/"}, seen)
}

func Test_ContinuationNotCalled(t *testing.T) {
	n := newNavigator(t)
	n.BeforeEach(func(context.Context, route.Descriptor, route.Descriptor, guard.Continuation) {})

	_, err := n.Navigate(context.Background(), "/", "/about")
	assert.True(t, errors.Is(err, ErrContinuationNotCalled))
}

func Test_ContinuationCalledTwice(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	table, err := route.NewTable(route.DefaultDescriptors())
	require.Nil(err)

	core, logs := observer.New(zapcore.WarnLevel)
	n := New(table, zap.New(core))
	n.BeforeEach(func(_ context.Context, _, _ route.Descriptor, next guard.Continuation) {
		next(guard.Proceed())
		next(guard.RedirectTo("/account/signin"))
	})

	res, err := n.Navigate(context.Background(), "/", "/about")
	require.Nil(err)
	assert.Equal("/about", res.Path)
	assert.Equal(1, logs.FilterMessage("navigation continuation called more than once").Len())
}

func Test_ContinuationCalledAfterReturn(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	table, err := route.NewTable(route.DefaultDescriptors())
	require.Nil(err)

	core, logs := observer.New(zapcore.WarnLevel)
	n := New(table, zap.New(core))

	release := make(chan struct{})
	done := make(chan struct{})
	n.BeforeEach(func(_ context.Context, _, _ route.Descriptor, next guard.Continuation) {
		go func() {
			defer close(done)
			<-release
			next(guard.Proceed())
		}()
	})

	_, err = n.Navigate(context.Background(), "/", "/about")
	assert.True(errors.Is(err, ErrContinuationNotCalled))

	close(release)
	<-done
	assert.Equal(1, logs.FilterMessage("navigation continuation called after hook returned").Len())
}

func Test_ContinuationFromGoroutine(t *testing.T) {
	n := newNavigator(t)
	n.BeforeEach(func(_ context.Context, to, _ route.Descriptor, next guard.Continuation) {
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			if to.Path == "/about" {
				next(guard.RedirectTo("/account/signin"))
				return
			}
			next(guard.Proceed())
		}()
		wg.Wait()
	})

	res, err := n.Navigate(context.Background(), "/", "/about")
	require.Nil(t, err)
	assert.Equal(t, "/account/signin", res.Path)
}

func Test_RedirectLoop(t *testing.T) {
	n := newNavigator(t)
	n.BeforeEach(func(_ context.Context, to, _ route.Descriptor, next guard.Continuation) {
		if to.Path == "/" {
			next(guard.RedirectTo("/about"))
			return
		}
		next(guard.RedirectTo("/"))
	})

	_, err := n.Navigate(context.Background(), "/", "/")
	assert.True(t, errors.Is(err, ErrRedirectLoop))
}

func Test_Abort(t *testing.T) {
	n := newNavigator(t)
	n.BeforeEach(func(_ context.Context, _, _ route.Descriptor, next guard.Continuation) {
		next(guard.Abort())
	})

	_, err := n.Navigate(context.Background(), "/", "/about")
	assert.True(t, errors.Is(err, ErrAborted))
}

func Test_RemoveHook(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	n := newNavigator(t)
	remove := n.BeforeEach(func(_ context.Context, _, _ route.Descriptor, next guard.Continuation) {
		next(guard.Abort())
	})

	_, err := n.Navigate(context.Background(), "/", "/about")
	require.NotNil(err)

	remove()
	remove()

	res, err := n.Navigate(context.Background(), "/", "/about")
	require.Nil(err)
	assert.Equal("/about", res.Path)
}

func Test_ConcurrentNavigations(t *testing.T) {
	n := newNavigator(t)
	n.BeforeEach(guard.New(stubSession{}).BeforeEach)

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := n.Navigate(context.Background(), "/", "/paste/submit")
			if err == nil && res.Path != "/account/signin" {
				err = errors.New("protected route committed without user: " + res.Path)
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.Nil(t, err)
	}
}
