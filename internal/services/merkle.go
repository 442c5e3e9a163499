// MerkleService provides Merkle tree operations over the resolve history
// for tamper-evident auditing.
package services

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aawaaz/complaint-desk/internal/models"
	"github.com/aawaaz/complaint-desk/internal/store"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"
)

// MerkleService manages the Merkle tree over history entries
type MerkleService struct {
	mu            sync.RWMutex
	leaves        []string
	layers        [][]string
	root          string
	lastBuildTime time.Time
	logger        *zap.SugaredLogger
}

// NewMerkleService creates a new Merkle service
func NewMerkleService(logger *zap.SugaredLogger) *MerkleService {
	return &MerkleService{
		leaves: make([]string, 0),
		layers: make([][]string, 0),
		logger: logger,
	}
}

// BuildFromHistory rebuilds the tree with one leaf per entry, in the given order
func (m *MerkleService) BuildFromHistory(entries []models.ResolveHistory) {
	hashes := make([]string, len(entries))
	for i, e := range entries {
		hashes[i] = LeafHash(e)
	}
	m.BuildFromHashes(hashes)
}

// BuildFromHashes rebuilds the tree from a list of leaf hashes
func (m *MerkleService) BuildFromHashes(hashes []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.leaves = hashes
	m.buildTree()
	m.lastBuildTime = time.Now()

	m.logger.Infow("Merkle tree rebuilt",
		"leaves", len(m.leaves),
		"root", m.root,
	)
}

// GetRoot returns the current Merkle root
func (m *MerkleService) GetRoot() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.root
}

// GetLeafCount returns the number of leaves
func (m *MerkleService) GetLeafCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.leaves)
}

// GetLastBuildTime returns when the tree was last rebuilt
func (m *MerkleService) GetLastBuildTime() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastBuildTime
}

// GetProof generates a Merkle proof for the given leaf index
func (m *MerkleService) GetProof(index int) (*models.MerkleProof, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if index < 0 || index >= len(m.leaves) {
		return nil, fmt.Errorf("index %d out of range (0-%d)", index, len(m.leaves)-1)
	}

	proof := &models.MerkleProof{
		LeafHash: m.leaves[index],
		Root:     m.root,
		Index:    index,
		Proof:    make([]models.ProofStep, 0),
	}

	currentIndex := index
	for i := 0; i < len(m.layers)-1; i++ {
		layer := m.layers[i]
		isRight := currentIndex%2 == 1
		siblingIndex := currentIndex + 1
		if isRight {
			siblingIndex = currentIndex - 1
		}

		// the last node of an odd layer is paired with itself
		sibling := layer[currentIndex]
		if siblingIndex < len(layer) {
			sibling = layer[siblingIndex]
		}
		position := "right"
		if isRight {
			position = "left"
		}
		proof.Proof = append(proof.Proof, models.ProofStep{
			Hash:     sibling,
			Position: position,
		})

		currentIndex /= 2
	}

	proof.Verified = VerifyProof(proof.LeafHash, proof.Proof, proof.Root)
	return proof, nil
}

// VerifyProof recomputes the path from leaf through steps and compares it with root
func VerifyProof(leaf string, steps []models.ProofStep, root string) bool {
	if leaf == "" || root == "" {
		return false
	}
	current := leaf
	for _, step := range steps {
		switch step.Position {
		case "left":
			current = hashPair(step.Hash, current)
		case "right":
			current = hashPair(current, step.Hash)
		default:
			return false
		}
	}
	return current == root
}

// LeafHash is the hex BLAKE2b-256 of an entry's canonical encoding
func LeafHash(e models.ResolveHistory) string {
	canonical := strings.Join([]string{
		e.ID,
		e.TicketNo,
		string(e.Status),
		e.Operator,
		e.Description,
		e.CreatedAt.UTC().Format(time.RFC3339Nano),
	}, "\x1f")
	sum := blake2b.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// buildTree constructs the Merkle tree from leaves (internal, must hold write lock)
func (m *MerkleService) buildTree() {
	if len(m.leaves) == 0 {
		m.root = ""
		m.layers = nil
		return
	}

	currentLayer := make([]string, len(m.leaves))
	copy(currentLayer, m.leaves)
	m.layers = [][]string{currentLayer}

	for len(currentLayer) > 1 {
		nextLayer := make([]string, 0, (len(currentLayer)+1)/2)
		for i := 0; i < len(currentLayer); i += 2 {
			left := currentLayer[i]
			right := left
			if i+1 < len(currentLayer) {
				right = currentLayer[i+1]
			}
			nextLayer = append(nextLayer, hashPair(left, right))
		}
		m.layers = append(m.layers, nextLayer)
		currentLayer = nextLayer
	}

	m.root = currentLayer[0]
}

// hashPair combines and hashes two nodes
func hashPair(left, right string) string {
	sum := blake2b.Sum256([]byte(left + right))
	return hex.EncodeToString(sum[:])
}

// IntegrityWorker periodically rebuilds the Merkle tree from the store
type IntegrityWorker struct {
	merkleSvc *MerkleService
	store     store.Store
	logger    *zap.SugaredLogger
}

// NewIntegrityWorker creates a new background integrity worker
func NewIntegrityWorker(ms *MerkleService, st store.Store, logger *zap.SugaredLogger) *IntegrityWorker {
	return &IntegrityWorker{merkleSvc: ms, store: st, logger: logger}
}

// Start begins the periodic Merkle tree rebuild loop
func (w *IntegrityWorker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Initial build
	w.Rebuild(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Integrity worker stopped")
			return
		case <-ticker.C:
			w.Rebuild(ctx)
		}
	}
}

// Rebuild reloads every history entry and rebuilds the tree. A failed load
// keeps the previous tree.
func (w *IntegrityWorker) Rebuild(ctx context.Context) {
	w.logger.Debug("Rebuilding Merkle tree...")

	entries, err := w.store.AllHistory(ctx)
	if err != nil {
		w.logger.Errorw("Failed to load history for Merkle rebuild", "error", err)
		return
	}
	w.merkleSvc.BuildFromHistory(entries)
}
