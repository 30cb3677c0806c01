package playlist

// Playlist holds an ordered collection of tracks.
type Playlist struct {
	tracks []Track
}

// NewPlaylist creates a playlist holding a copy of tracks.
func NewPlaylist(tracks ...Track) *Playlist {
	p := &Playlist{tracks: make([]Track, 0, len(tracks))}
	p.Add(tracks...)
	return p
}

// Add appends tracks to the playlist.
func (p *Playlist) Add(tracks ...Track) {
	p.tracks = append(p.tracks, tracks...)
}

// Clear removes all tracks from the playlist.
func (p *Playlist) Clear() {
	p.tracks = p.tracks[:0]
}

// Tracks returns a copy of all tracks.
func (p *Playlist) Tracks() []Track {
	result := make([]Track, len(p.tracks))
	copy(result, p.tracks)
	return result
}

// Track returns the track at the given index, or nil if out of bounds.
func (p *Playlist) Track(index int) *Track {
	if index < 0 || index >= len(p.tracks) {
		return nil
	}
	return &p.tracks[index]
}

// Len returns the number of tracks.
func (p *Playlist) Len() int {
	return len(p.tracks)
}

// IndexOf returns the index of the first track with the given id, or -1.
func (p *Playlist) IndexOf(id string) int {
	for i := range p.tracks {
		if p.tracks[i].ID == id {
			return i
		}
	}
	return -1
}

// Swap exchanges two tracks. Out of range indexes are ignored.
func (p *Playlist) Swap(i, j int) {
	if i < 0 || j < 0 || i >= len(p.tracks) || j >= len(p.tracks) {
		return
	}
	p.tracks[i], p.tracks[j] = p.tracks[j], p.tracks[i]
}
