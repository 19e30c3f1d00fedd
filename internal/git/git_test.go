package git

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDiff(t *testing.T) {
	diff := []byte(`diff --git a/app/main.py b/app/main.py
index 1111111..2222222 100644
--- a/app/main.py
+++ b/app/main.py
@@ -10,2 +10,3 @@ def handler():
+    log(request)
+    return dispatch(request)
+    # trailing
@@ -40 +42 @@ def teardown():
+    close_all()
diff --git a/app/util.py b/app/util.py
index 3333333..4444444 100644
--- a/app/util.py
+++ b/app/util.py
@@ -5,3 +0,0 @@ def removed():
-    gone()
`)

	changes := parseDiff(diff)
	require.Len(t, changes, 2)

	t.Run("multiple hunks accumulate on one file", func(t *testing.T) {
		assert.Equal(t, "app/main.py", changes[0].Path)
		assert.Equal(t, []int{10, 11, 12, 42}, changes[0].ChangedLines)
	})

	t.Run("pure deletion yields a file with no changed lines", func(t *testing.T) {
		assert.Equal(t, "app/util.py", changes[1].Path)
		assert.Empty(t, changes[1].ChangedLines)
	})
}

func TestParseDiff_Empty(t *testing.T) {
	assert.Empty(t, parseDiff(nil))
	assert.Empty(t, parseDiff([]byte("")))
}
