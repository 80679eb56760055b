package game

import (
	"fmt"

	"github.com/okian/hearts/internal/domain/model"
)

func startOverlay(cfg Settings) model.Overlay {
	return model.Overlay{
		Kind:  model.OverlayStart,
		Title: fmt.Sprintf("Siap, %s? 💗", cfg.Recipient),
		Description: fmt.Sprintf(
			"Klik hati yang muncul! Kumpulin %d hati dalam %d detik untuk membuka surat maaf.",
			cfg.Goal, cfg.Duration),
		Replay: true,
	}
}

func introOverlay(cfg Settings) model.Overlay {
	return model.Overlay{
		Kind:  model.OverlayIntro,
		Title: "Ayo main dulu 💘",
		Description: fmt.Sprintf(
			"Klik hati yang muncul! Kumpulin %d hati dalam %d detik untuk membuka surat.",
			cfg.Goal, cfg.Duration),
		Replay: true,
	}
}

func wonOverlay() model.Overlay {
	return model.Overlay{
		Kind:        model.OverlayWon,
		Title:       "Kamu berhasil! 💗",
		Description: "Hatinya udah terkumpul. Sekarang kamu bisa buka surat maafnya.",
	}
}

func timedOutOverlay(score, goal int) model.Overlay {
	return model.Overlay{
		Kind:        model.OverlayTimedOut,
		Title:       "Hampir! 🥺",
		Description: fmt.Sprintf("Waktunya habis. Kamu dapat %d/%d. Coba lagi ya, aku tungguin.", score, goal),
		Replay:      true,
	}
}
