package graph

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

// NodeByFilePath returns the node registered against filePath, via the
// hash tracker's note mapping.
func (g *Graph) NodeByFilePath(filePath string) (*Node, bool) {
	id, ok := g.tracker.NoteID(filePath)
	if !ok {
		return nil, false
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.nodeByIDLocked(id)
}

// SyncFile reconciles a single path against its current on-disk content.
// If the file no longer exists the corresponding node (if any) is removed.
// Otherwise its note is re-scanned; an unchanged content hash is a no-op,
// a changed or new one replaces the node. Returns one of
// "skipped", "removed", "created", "updated".
func (g *Graph) SyncFile(ctx context.Context, filePath string) (string, error) {
	if _, err := os.Stat(filePath); err != nil {
		if os.IsNotExist(err) {
			if removeErr := g.RemoveFile(filePath); removeErr != nil {
				return "", removeErr
			}
			return "removed", nil
		}
		return "", err
	}

	if err := g.notesMgr.RescanOne(filePath); err != nil {
		return "", err
	}
	note, ok := g.notesMgr.Get(filePath)
	if !ok {
		return "", fmt.Errorf("graph.SyncFile: %s not found after rescan", filePath)
	}

	existing, hadNode := g.NodeByFilePath(filePath)
	if hadNode && existing.ContentHash == note.ContentHash {
		return "skipped", nil
	}

	action := "created"
	if hadNode {
		if err := g.RemoveNode(existing.ID); err != nil {
			return "", err
		}
		action = "updated"
	}

	if _, err := g.addNoteFromParsed(ctx, filePath, noteToParsedNote(note)); err != nil {
		return "", err
	}

	g.resolveWikiLinks()
	if err := g.saveGraph(); err != nil {
		return "", err
	}
	return action, nil
}

// RemoveFile removes the node registered for filePath, if any.
func (g *Graph) RemoveFile(filePath string) error {
	id, ok := g.tracker.NoteID(filePath)
	if !ok {
		return nil
	}
	if err := g.RemoveNode(id); err != nil {
		return err
	}
	return g.saveGraph()
}

// Reset clears every in-memory index, the hash cache, the vector
// collection's contents, and deletes the persisted snapshot. Used by
// FullSync(forceRebuild=true) to rebuild from scratch.
func (g *Graph) Reset() error {
	g.mu.Lock()
	ids := make([]string, 0, len(g.nodesByID))
	for id := range g.nodesByID {
		ids = append(ids, id)
	}
	g.nodesByID = make(map[string]*Node)
	g.edgesByID = make(map[string]*Edge)
	g.titleToID = make(map[string]string)
	g.titleCollisions = make(map[string][]string)
	g.categoryIndex = make(map[string]map[string]struct{})
	g.tagIndex = make(map[string]map[string]struct{})
	g.hierarchyIndex = make(map[string]map[string]struct{})
	g.mu.Unlock()

	if len(ids) > 0 {
		if err := g.vectors.Delete(g.collection, ids); err != nil {
			return err
		}
	}
	if err := g.tracker.Clear(); err != nil {
		return err
	}
	if err := os.Remove(g.snapshotPath()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// CleanupOrphanedVectors deletes every vector-collection entry whose id is
// not a known node id.
func (g *Graph) CleanupOrphanedVectors() (int, error) {
	records, err := g.vectors.Get(g.collection, nil)
	if err != nil {
		return 0, err
	}

	g.mu.RLock()
	var orphaned []string
	for _, r := range records {
		if _, ok := g.nodesByID[r.ID]; !ok {
			orphaned = append(orphaned, r.ID)
		}
	}
	g.mu.RUnlock()

	if len(orphaned) == 0 {
		return 0, nil
	}
	if err := g.vectors.Delete(g.collection, orphaned); err != nil {
		return 0, err
	}
	return len(orphaned), nil
}

// FullSync enumerates every note under the notes directory, classifies
// each against the graph's current state (new/modified/deleted/unchanged),
// applies the corresponding mutations, resolves wiki-links once, persists
// the snapshot, and reaps orphaned vectors and stale hash-cache entries.
func (g *Graph) FullSync(ctx context.Context, forceRebuild bool) (SyncReport, error) {
	start := time.Now()
	runID := uuid.NewString()
	report := SyncReport{
		RunID:            runID,
		Timestamp:        start,
		GraphNodesBefore: g.nodeCount(),
	}
	g.logger.Info("sync started", "run_id", runID, "force_rebuild", forceRebuild)

	if forceRebuild {
		if err := g.Reset(); err != nil {
			report.Errors = append(report.Errors, err.Error())
			return report, err
		}
		report.ActionsTaken = append(report.ActionsTaken, "reset graph for force rebuild")
	}

	if _, err := g.notesMgr.Scan(); err != nil {
		report.Errors = append(report.Errors, err.Error())
		return report, err
	}
	notesOnDisk := g.notesMgr.All()
	report.VaultFilesFound = len(notesOnDisk)

	onDiskPaths := make(map[string]struct{}, len(notesOnDisk))
	for _, n := range notesOnDisk {
		onDiskPaths[n.Path] = struct{}{}
	}

	g.mu.RLock()
	var stalePaths []string
	for _, n := range g.nodesByID {
		if _, ok := onDiskPaths[n.FilePath]; !ok {
			stalePaths = append(stalePaths, n.FilePath)
		}
	}
	g.mu.RUnlock()

	changes := ChangesDetected{ForceRebuild: forceRebuild}

	for _, path := range stalePaths {
		if err := g.RemoveFile(path); err != nil {
			report.Errors = append(report.Errors, err.Error())
			continue
		}
		changes.DeletedFiles++
		report.ActionsTaken = append(report.ActionsTaken, "deleted "+path)
	}

	for _, note := range notesOnDisk {
		existing, hadNode := g.NodeByFilePath(note.Path)
		switch {
		case !hadNode:
			if _, err := g.addNoteFromParsed(ctx, note.Path, noteToParsedNote(note)); err != nil {
				report.Errors = append(report.Errors, err.Error())
				continue
			}
			changes.NewFiles++
			report.ActionsTaken = append(report.ActionsTaken, "created "+note.Path)
		case existing.ContentHash != note.ContentHash:
			if err := g.RemoveNode(existing.ID); err != nil {
				report.Errors = append(report.Errors, err.Error())
				continue
			}
			if _, err := g.addNoteFromParsed(ctx, note.Path, noteToParsedNote(note)); err != nil {
				report.Errors = append(report.Errors, err.Error())
				continue
			}
			changes.ModifiedFiles++
			report.ActionsTaken = append(report.ActionsTaken, "updated "+note.Path)
		default:
			changes.UnchangedFiles++
		}
	}
	changes.TotalChanges = changes.NewFiles + changes.ModifiedFiles + changes.DeletedFiles
	report.ChangesDetected = changes

	resolved, broken := g.resolveWikiLinks()
	report.ActionsTaken = append(report.ActionsTaken, fmt.Sprintf("resolved %d wiki-links (%d broken)", resolved, broken))

	if err := g.saveGraph(); err != nil {
		report.Errors = append(report.Errors, err.Error())
		return report, err
	}

	orphaned, err := g.CleanupOrphanedVectors()
	if err != nil {
		report.Warnings = append(report.Warnings, err.Error())
	}

	validPaths := make(map[string]struct{}, len(onDiskPaths))
	for p := range onDiskPaths {
		validPaths[p] = struct{}{}
	}
	if err := g.tracker.CleanupStale(validPaths); err != nil {
		report.Warnings = append(report.Warnings, err.Error())
	}

	report.CleanupResults = &CleanupResults{OrphanedVectorsRemoved: orphaned}
	report.GraphNodesAfter = g.nodeCount()
	report.GraphEdgesAfter = g.edgeCount()
	report.ProcessingTimeSeconds = time.Since(start).Seconds()
	report.SyncCompleted = true

	g.logger.Info("sync completed",
		"run_id", runID,
		"duration_seconds", report.ProcessingTimeSeconds,
		"changes", changes.TotalChanges,
		"errors", len(report.Errors),
	)

	return report, nil
}

func (g *Graph) nodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodesByID)
}

func (g *Graph) edgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.edgesByID)
}
