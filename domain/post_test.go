package domain

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanComment_DecodesBreaksAndEntities(t *testing.T) {
	got := CleanComment("foo<br>&gt;&gt;1&#47;bar")
	assert.Equal(t, "foo\n>>1/bar", got)
}

func TestCleanComment_StripsTags(t *testing.T) {
	raw := `<a href="/vg/res/1.html#2" class="post-reply-link" data-num="2">&gt;&gt;2</a><br>` +
		`<span class="spoiler">hidden</span> <strong>bold</strong><br><em>x</em>`
	got := CleanComment(raw)
	assert.Equal(t, ">>2\nhidden bold\nx", got)
}

func TestPost_CleanedCommentIsCached(t *testing.T) {
	p := &Post{Num: 1, Comment: "a<br>b"}
	first := p.CleanedComment()
	p.Comment = "changed"
	assert.Equal(t, first, p.CleanedComment())
	assert.Equal(t, "a\nb", first)
}

func TestOutgoingLinks_OrderedAndUnique(t *testing.T) {
	p := &Post{Num: 10, Comment: "&gt;&gt;3 and &gt;&gt;1<br>&gt;&gt;3 again &gt;&gt;12x"}
	assert.Equal(t, []int{3, 1, 12}, p.OutgoingLinks())
}

func TestOutgoingLinks_NoneIsNil(t *testing.T) {
	p := &Post{Num: 1, Comment: "plain &gt; quote"}
	assert.Nil(t, p.OutgoingLinks())
}

func TestIncomingRefs_SetSemantics(t *testing.T) {
	p := &Post{Num: 1}
	require.True(t, p.AddIncomingRef(5))
	require.True(t, p.AddIncomingRef(3))
	assert.False(t, p.AddIncomingRef(5))
	assert.Equal(t, []int{5, 3}, p.IncomingRefs())
	assert.Equal(t, 2, p.IncomingRefCount())

	assert.True(t, p.RemoveIncomingRef(5))
	assert.False(t, p.RemoveIncomingRef(5))
	assert.Equal(t, []int{3}, p.IncomingRefs())
}

func TestIncomingRefs_ConcurrentAdds(t *testing.T) {
	p := &Post{Num: 1}
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			p.AddIncomingRef(n % 10)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 10, p.IncomingRefCount())
}

func TestFile_KindAndThumbHeight(t *testing.T) {
	f := File{Type: FileTypeWebM, Thumbnail: "/t.jpg", TnWidth: 200, TnHeight: 150}
	assert.Equal(t, KindVideo, f.Type.Kind())
	assert.Equal(t, 75, f.ThumbHeight(100))

	assert.Equal(t, KindSticker, FileTypeSticker.Kind())
	assert.Equal(t, KindUnknown, FileType(42).Kind())

	broken := File{Thumbnail: "/t.jpg"}
	assert.False(t, broken.HasThumbnail())
	assert.Zero(t, broken.ThumbHeight(100))
}
