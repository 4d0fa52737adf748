package stream

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/pion/webrtc/v4"
	"go.uber.org/zap"
)

// DataChannelLabel is the label of the snapshot data channel offered to peers.
const DataChannelLabel = "player"

// WebRTCHandler serves WebRTC SDP negotiation for a low-latency snapshot feed
// over a data channel.
type WebRTCHandler struct {
	broadcaster *Broadcaster
	view        View
	log         *zap.Logger
	mu          sync.Mutex
	peers       []*webrtc.PeerConnection
}

// NewWebRTCHandler creates a WebRTC feed handler.
func NewWebRTCHandler(b *Broadcaster, view View, log *zap.Logger) *WebRTCHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &WebRTCHandler{
		broadcaster: b,
		view:        view,
		log:         log,
	}
}

// PeerCount returns the number of active WebRTC peers.
func (h *WebRTCHandler) PeerCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.peers)
}

func (h *WebRTCHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.WriteHeader(http.StatusOK)
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}

	var offer webrtc.SessionDescription
	if err := json.NewDecoder(r.Body).Decode(&offer); err != nil {
		http.Error(w, "invalid SDP offer", http.StatusBadRequest)
		return
	}

	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{})
	if err != nil {
		http.Error(w, "create peer connection failed", http.StatusInternalServerError)
		return
	}

	ordered := true
	dc, err := pc.CreateDataChannel(DataChannelLabel, &webrtc.DataChannelInit{Ordered: &ordered})
	if err != nil {
		pc.Close()
		http.Error(w, "create data channel failed", http.StatusInternalServerError)
		return
	}

	if err := pc.SetRemoteDescription(offer); err != nil {
		pc.Close()
		http.Error(w, "set remote description failed", http.StatusBadRequest)
		return
	}

	answer, err := pc.CreateAnswer(nil)
	if err != nil {
		pc.Close()
		http.Error(w, "create answer failed", http.StatusInternalServerError)
		return
	}

	if err := pc.SetLocalDescription(answer); err != nil {
		pc.Close()
		http.Error(w, "set local description failed", http.StatusInternalServerError)
		return
	}

	// Wait for ICE gathering to complete
	gatherComplete := webrtc.GatheringCompletePromise(pc)
	select {
	case <-gatherComplete:
	case <-r.Context().Done():
		pc.Close()
		return
	}

	h.mu.Lock()
	h.peers = append(h.peers, pc)
	h.mu.Unlock()

	h.log.Info("webrtc peer connected", zap.Int("total", h.PeerCount()))

	dc.OnOpen(func() {
		go h.streamToPeer(dc)
	})

	// Clean up on disconnect
	pc.OnConnectionStateChange(func(s webrtc.PeerConnectionState) {
		if s == webrtc.PeerConnectionStateFailed ||
			s == webrtc.PeerConnectionStateClosed ||
			s == webrtc.PeerConnectionStateDisconnected {
			if h.removePeer(pc) {
				pc.Close()
				h.log.Info("webrtc peer disconnected", zap.Int("remaining", h.PeerCount()))
			}
		}
	})

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	json.NewEncoder(w).Encode(pc.LocalDescription())
}

func (h *WebRTCHandler) streamToPeer(dc *webrtc.DataChannel) {
	listener := h.broadcaster.Subscribe()
	defer h.broadcaster.Unsubscribe(listener)

	closed := make(chan struct{})
	var once sync.Once
	dc.OnClose(func() { once.Do(func() { close(closed) }) })

	for {
		select {
		case <-closed:
			return
		case <-listener.done:
			return
		case snap := <-listener.C:
			data, err := h.view.encode(snap)
			if err != nil {
				h.log.Error("encode snapshot", zap.Error(err))
				continue
			}
			if err := dc.SendText(string(data)); err != nil {
				return
			}
		}
	}
}

func (h *WebRTCHandler) removePeer(pc *webrtc.PeerConnection) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, p := range h.peers {
		if p == pc {
			h.peers = append(h.peers[:i], h.peers[i+1:]...)
			return true
		}
	}
	return false
}
