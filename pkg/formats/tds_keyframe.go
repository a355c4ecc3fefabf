package formats

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// parseKeyframeChunk walks the keyframer section and descends into each
// track-info block.
func (p *tdsParser) parseKeyframeChunk(end int) error {
	for {
		ch, ok, err := p.nextChunk(end)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		switch ch.tag {
		case chunkTrackInfo:
			err = p.parseHierarchyChunk(ch.end)
		}
		if err != nil {
			return err
		}
		p.endChunk(ch)
	}
}

// parseHierarchyChunk consumes the per-node records of a track-info block:
// the depth-tagged name record that places the node in the tree, the pivot,
// and the optional position/rotation/scaling key tracks. Pivot and tracks
// always belong to the most recently created node.
func (p *tdsParser) parseHierarchyChunk(end int) error {
	for {
		ch, ok, err := p.nextChunk(end)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		switch ch.tag {
		case chunkTrackObjName:
			name, _ := p.c.asciiz(ch.end)

			// two flag words we have no use for
			if serr := p.c.skip(4); serr != nil {
				break
			}
			raw, rerr := p.c.readU16()
			if rerr != nil {
				break
			}
			// the on-disk no-parent sentinel is 0xFFFF; shifting by one in
			// 16-bit arithmetic wraps it to 0 so it compares correctly
			// against the zero-based depth counter
			node := &TDSNode{
				Name:           name,
				HierarchyPos:   int(raw + 1),
				HierarchyIndex: p.lastNodeIndex,
			}
			p.attachNode(node)

		case chunkTrackPivot:
			if v, verr := p.readVec3Swapped(); verr == nil {
				p.currentNode.Pivot = v
			}

		case chunkTrackPos:
			p.parseVectorTrack(&p.currentNode.PositionKeys, false)

		case chunkTrackRotate:
			p.parseRotationTrack(p.currentNode)

		case chunkTrackScale:
			p.parseVectorTrack(&p.currentNode.ScalingKeys, true)
		}
		p.endChunk(ch)
	}
}

// attachNode places a freshly read node in the tree. The file stores no
// parent pointers, only the depth at which each node was visited in file
// order, so placement keys off the depth of the previously attached node
// and a running high-water counter.
func (p *tdsParser) attachNode(n *TDSNode) {
	cur := p.currentNode
	switch {
	case cur.HierarchyPos == n.HierarchyPos:
		// sibling of the last node at the same depth
		if cur.Parent != nil {
			cur.Parent.addChild(n)
		} else {
			cur.addChild(n)
		}
		p.lastNodeIndex++

	case n.HierarchyPos >= p.lastNodeIndex:
		// descending below the deepest level seen so far
		cur.addChild(n)
		p.lastNodeIndex = n.HierarchyPos

	default:
		// back up to a shallower level
		p.inverseNodeSearch(n, cur)
		p.lastNodeIndex++
	}
	p.currentNode = n
}

// inverseNodeSearch walks the ancestor chain upward looking for the level
// the new node belongs to. Reaching past the root attaches the node
// directly under the root.
func (p *tdsParser) inverseNodeSearch(n, cur *TDSNode) {
	for {
		if cur == nil {
			p.doc.Root.addChild(n)
			return
		}
		if cur.HierarchyPos == n.HierarchyPos {
			if cur.Parent != nil {
				cur.Parent.addChild(n)
			} else {
				cur.addChild(n)
			}
			return
		}
		cur = cur.Parent
	}
}

// readTrackHeader skips the track flags and returns the key count.
// Track layout: u16 flags, 4 unknown words, u16 key count, u16 unknown,
// then the keys.
func (p *tdsParser) readTrackHeader() (int, error) {
	if err := p.c.skip(10); err != nil {
		return 0, err
	}
	n, err := p.c.readU16()
	if err != nil {
		return 0, err
	}
	if err := p.c.skip(2); err != nil {
		return 0, err
	}
	return int(n), nil
}

func hasVectorKey(keys []TDSVectorKey, frame int) bool {
	for i := range keys {
		if keys[i].Frame == frame {
			return true
		}
	}
	return false
}

func hasQuatKey(keys []TDSQuatKey, frame int) bool {
	for i := range keys {
		if keys[i].Frame == frame {
			return true
		}
	}
	return false
}

// parseVectorTrack reads a position or scaling key track into keys. Keys
// repeating an already-stored frame time are discarded. Scaling tracks
// whose keys are all exactly zero (a known producer defect) are dropped
// entirely.
func (p *tdsParser) parseVectorTrack(keys *[]TDSVectorKey, scaling bool) {
	n, err := p.readTrackHeader()
	if err != nil {
		return
	}
	zeroKeys := 0
	for i := 0; i < n; i++ {
		frame, ferr := p.c.readU16()
		if ferr != nil {
			return
		}
		if ferr = p.c.skip(4); ferr != nil {
			return
		}
		v, verr := p.readVec3()
		if verr != nil {
			return
		}
		if scaling && v == (mgl32.Vec3{}) {
			p.log.Warn("zero scaling axis in scaling keyframe", zap.Uint16("frame", frame))
			zeroKeys++
		}
		if hasVectorKey(*keys, int(frame)) {
			continue
		}
		*keys = append(*keys, TDSVectorKey{Frame: int(frame), Value: v})
	}
	if scaling && n > 0 && zeroKeys == n {
		p.log.Warn("all scaling keys are zero, removing track")
		*keys = nil
	}
}

// parseRotationTrack reads a rotation key track. Keys are stored as an
// angle in radians plus a rotation axis and converted to quaternions.
func (p *tdsParser) parseRotationTrack(node *TDSNode) {
	n, err := p.readTrackHeader()
	if err != nil {
		return
	}
	for i := 0; i < n; i++ {
		frame, ferr := p.c.readU16()
		if ferr != nil {
			return
		}
		if ferr = p.c.skip(4); ferr != nil {
			return
		}
		rad, rerr := p.c.readF32()
		if rerr != nil {
			return
		}
		axis, aerr := p.readVec3()
		if aerr != nil {
			return
		}
		if hasQuatKey(node.RotationKeys, int(frame)) {
			continue
		}
		node.RotationKeys = append(node.RotationKeys, TDSQuatKey{
			Frame: int(frame),
			Value: mgl32.QuatRotate(rad, axis),
		})
	}
}
